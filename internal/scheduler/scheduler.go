// Package scheduler repeats hunt passes on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }
func (j funcJob) Name() string                  { return j.name }

// Func adapts fn into a Job.
func Func(name string, fn func(ctx context.Context) error) Job {
	return funcJob{name: name, fn: fn}
}

// Every returns the cron schedule for a fixed interval in minutes.
func Every(minutes int) string {
	return fmt.Sprintf("@every %dm", minutes)
}

// Scheduler manages background jobs. A job never overlaps itself: a tick
// that fires while the previous run is still going is skipped.
type Scheduler struct {
	ctx  context.Context
	cron *cron.Cron
	log  zerolog.Logger
	wg   sync.WaitGroup
}

// New creates a new scheduler. Jobs run with ctx.
func New(ctx context.Context, log zerolog.Logger) *Scheduler {
	l := log.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		ctx:  ctx,
		cron: cron.New(cron.WithChain(cron.Recover(cronLogger{l}))),
		log:  l,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job on schedule. With immediate set, the first run
// starts right away instead of waiting a full interval.
func (s *Scheduler) AddJob(schedule string, job Job, immediate bool) error {
	run := s.guard(job)

	if _, err := s.cron.AddFunc(schedule, run); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	if immediate {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			run()
		}()
	}
	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run(s.ctx)
}

// guard wraps job so overlapping runs are skipped and Stop can wait for it.
func (s *Scheduler) guard(job Job) func() {
	var running atomic.Bool
	return func() {
		if s.ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			s.log.Warn().Str("job", job.Name()).Msg("Previous run still in progress, skipping")
			return
		}
		s.wg.Add(1)
		defer func() {
			running.Store(false)
			s.wg.Done()
		}()

		s.log.Debug().Str("job", job.Name()).Msg("Running job")
		if err := job.Run(s.ctx); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
		} else {
			s.log.Debug().Str("job", job.Name()).Msg("Job completed")
		}
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
