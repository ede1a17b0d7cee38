package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"memecoin-hunter/internal/presentation"
)

var (
	scanCSV      string
	scanMarkdown string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one hunt pass and print the ranking",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanCSV, "csv", "", "also export the ranking as CSV to this path")
	scanCmd.Flags().StringVar(&scanMarkdown, "markdown", "", "also write a Markdown report to this path")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot open persistent store")
	}
	defer st.Close()

	renderers := presentation.Multi{presentation.NewConsole(os.Stdout)}
	if scanCSV != "" {
		renderers = append(renderers, presentation.NewCSVFile(scanCSV, logger))
	}
	if scanMarkdown != "" {
		renderers = append(renderers, presentation.NewMarkdownFile(scanMarkdown, logger))
	}

	p := buildPipeline(ctx, cfg, st, renderers, logger)
	defer p.Close()

	result, err := p.orch.Run(ctx)
	if result != nil {
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, result.Status())
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
