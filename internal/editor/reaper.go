package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/pdf-editor/pkg/lifecycle"
)

// Reaper periodically deletes expired sessions.
type Reaper struct {
	cron     *cron.Cron
	schedule cron.Schedule
	sys      System
	logger   *slog.Logger
}

// NewReaper prepares System.Reap on schedule, a standard cron spec or
// descriptor such as "@every 15m". Nothing runs until Start.
func NewReaper(sys System, schedule string, logger *slog.Logger) (*Reaper, error) {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("schedule reaper: %w", err)
	}

	return &Reaper{
		cron:     cron.New(),
		schedule: sched,
		sys:      sys,
		logger:   logger.With("system", "reaper"),
	}, nil
}

// Start schedules the job with the lifecycle context, runs the schedule once
// startup begins and stops it on shutdown, waiting for an in-flight reap.
func (r *Reaper) Start(lc *lifecycle.Coordinator) error {
	ctx := lc.Context()
	r.cron.Schedule(r.schedule, cron.FuncJob(func() {
		r.run(ctx)
	}))

	lc.OnStartup(func() {
		r.cron.Start()
		r.logger.Info("session reaper started")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-r.cron.Stop().Done()
		r.logger.Info("session reaper stopped")
	})

	return nil
}

// RunOnce reaps sessions expired as of now.
func (r *Reaper) RunOnce(ctx context.Context, now time.Time) (int, error) {
	return r.sys.Reap(ctx, now)
}

func (r *Reaper) run(ctx context.Context) {
	n, err := r.RunOnce(ctx, time.Now())
	if err != nil {
		r.logger.Error("reap failed", "error", err)
		return
	}
	r.logger.Debug("reap completed", "reaped", n)
}
