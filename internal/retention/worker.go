// Package retention periodically deletes orders older than a configured
// window. Orders are immutable after checkout; this sweep is the only thing
// that ever touches them again.
package retention

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/order"
)

// Worker runs the retention sweep on a fixed interval.
type Worker struct {
	orders   order.Repository
	lg       *zap.Logger
	window   time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewWorker creates a retention Worker deleting orders older than window,
// checking every interval.
func NewWorker(orders order.Repository, lg *zap.Logger, window, interval time.Duration) *Worker {
	return &Worker{
		orders:   orders,
		lg:       lg,
		window:   window,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps until ctx is cancelled. The first sweep happens after one full
// interval, not at startup. A zero window disables retention entirely.
func (w *Worker) Run(ctx context.Context) {
	if w.window <= 0 || w.interval <= 0 {
		w.lg.Info("order retention disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	cutoff := w.now().Add(-w.window)
	deleted, err := w.orders.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.lg.Error("order retention sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		w.lg.Info("order retention sweep",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
}
