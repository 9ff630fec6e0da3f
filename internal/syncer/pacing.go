package syncer

import (
	"context"
	"time"
)

// IntervalPacer enforces a fixed delay between consecutive external calls.
// Probing and mutating runs use different intervals, so each gets its own
// pacer from config.
type IntervalPacer struct {
	interval time.Duration
}

func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{interval: interval}
}

func (p *IntervalPacer) Pause(ctx context.Context) error {
	if p.interval <= 0 {
		return nil
	}
	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
