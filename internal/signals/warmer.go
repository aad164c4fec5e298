package signals

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	applogger "PricePulse/pkg/logger"
)

// Warmer periodically refreshes the signal cache for a fixed set of
// queries so interactive requests rarely pay the cold-fetch cost.
type Warmer struct {
	agg      *Aggregator
	queries  []string
	schedule string
	cron     *cron.Cron
	logger   *applogger.Logger
}

// NewWarmer creates a cache warmer. An empty query list disables it.
func NewWarmer(agg *Aggregator, queries []string, schedule string, logger *applogger.Logger) *Warmer {
	return &Warmer{
		agg:      agg,
		queries:  queries,
		schedule: schedule,
		logger:   logger,
	}
}

// Start warms once immediately, then on the cron schedule.
func (w *Warmer) Start(ctx context.Context) error {
	if len(w.queries) == 0 {
		return nil
	}

	w.warm(ctx)

	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.schedule, func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		w.warm(warmCtx)
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (w *Warmer) Stop(ctx context.Context) error {
	if w.cron == nil {
		return nil
	}
	select {
	case <-w.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Warmer) warm(ctx context.Context) {
	for _, q := range w.queries {
		if _, err := w.agg.Signals(ctx, q); err != nil && w.logger != nil {
			w.logger.Warn("signal warm failed",
				applogger.String("query", q),
				applogger.Error(err),
			)
		}
	}
	if w.logger != nil {
		w.logger.Debug("signal cache warmed", applogger.Int("queries", len(w.queries)))
	}
}
