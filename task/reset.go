package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Resetter runs the recurring-task rollover on a schedule.
type Resetter struct {
	store  *Store
	logger *slog.Logger
	cron   *cron.Cron
}

// NewResetter creates a resetter over the store.
func NewResetter(store *Store, logger *slog.Logger) *Resetter {
	return &Resetter{
		store:  store,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start schedules the daily rollover. The job runs at midnight; the
// weekly/monthly boundaries are decided inside ResetRecurring from the
// current date.
func (r *Resetter) Start() error {
	_, err := r.cron.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.store.ResetRecurring(ctx, time.Now()); err != nil {
			r.logger.Error("recurring task reset failed", "error", err)
			return
		}
		r.logger.Info("recurring tasks reset")
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the schedule, waiting for a running job to finish.
func (r *Resetter) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
