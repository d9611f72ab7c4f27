// Package ratecounter periodically logs the ingest rate, grounded on
// the same snapshot-and-publish loop shape used for churn telemetry:
// an atomic counter sampled on a ticker, diffed against the previous
// sample to get a windowed rate.
package ratecounter

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Counter tracks a running total and periodically logs its rate.
type Counter struct {
	total atomic.Int64
	log   *slog.Logger
}

// New builds a Counter. A nil logger falls back to slog.Default.
func New(log *slog.Logger) *Counter {
	if log == nil {
		log = slog.Default()
	}
	return &Counter{log: log.With(slog.String("component", "ratecounter"))}
}

// Add increments the running total by n.
func (c *Counter) Add(n int64) {
	c.total.Add(n)
}

// Run logs the ingest rate every interval until ctx is cancelled.
func (c *Counter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := c.total.Load()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := c.total.Load()
			rate := float64(now-last) / interval.Seconds()
			c.log.Info("ingest rate", "events_total", now, "events_per_sec", rate)
			last = now
		}
	}
}
