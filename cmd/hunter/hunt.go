package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"memecoin-hunter/internal/api"
	"memecoin-hunter/internal/presentation"
	"memecoin-hunter/internal/scheduler"
)

var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Repeat hunt passes on an interval and serve the status API",
	RunE:  runHunt,
}

func runHunt(cmd *cobra.Command, _ []string) error {
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

	hub := presentation.NewHub(nil, logger)
	defer hub.Close()

	p := buildPipeline(ctx, cfg, st, presentation.Multi{presentation.NewConsole(os.Stdout), hub}, logger)
	defer p.Close()

	tracker := api.NewTracker()
	server := api.New(api.Config{
		Addr:    cfg.Server.Addr,
		Log:     logger,
		Store:   st.store,
		Tracker: tracker,
		Feed:    hub,
	})
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	sched := scheduler.New(ctx, logger)
	job := scheduler.Func("hunt", func(ctx context.Context) error {
		tracker.Begin()
		result, err := p.orch.Run(ctx)
		tracker.Finish(result, err)
		if result != nil {
			logger.Info().Msg(result.Status())
		}
		return err
	})
	if err := sched.AddJob(scheduler.Every(cfg.Hunt.IntervalMinutes), job, true); err != nil {
		return err
	}
	sched.Start()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
