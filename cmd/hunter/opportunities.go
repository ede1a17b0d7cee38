package main

import (
	"os"

	"github.com/spf13/cobra"

	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/orchestrator"
	"memecoin-hunter/internal/presentation"
)

var opportunitiesLimit int

var opportunitiesCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "Print the latest persisted opportunities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		st, err := openStores(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		stored, err := st.store.LatestOpportunities(cmd.Context(), opportunitiesLimit)
		if err != nil {
			return err
		}

		opps := make([]domain.Opportunity, len(stored))
		for i, o := range stored {
			opps[i] = *o
		}
		presentation.NewConsole(os.Stdout).Render(opps, orchestrator.Summarize(opps))
		return nil
	},
}

func init() {
	opportunitiesCmd.Flags().IntVar(&opportunitiesLimit, "limit", 10, "number of opportunities to print")
}
