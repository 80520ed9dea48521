package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/order"
)

const queueSize = 256

// Dispatcher implements order.Notifier: it encodes the event once and fans
// it out to every sink from a background worker. A full queue drops the
// event rather than block checkout.
type Dispatcher struct {
	sinks []Sink
	lg    *zap.Logger
	queue chan envelope
	done  chan struct{}
}

type envelope struct {
	key     string
	payload []byte
}

var _ order.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher fanning out to the given sinks.
// Call Run to start delivery.
func NewDispatcher(lg *zap.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks: sinks,
		lg:    lg,
		queue: make(chan envelope, queueSize),
		done:  make(chan struct{}),
	}
}

// Run delivers queued events until ctx is cancelled, then drains whatever is
// already queued and returns.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case env := <-d.queue:
			d.deliver(ctx, env)
		case <-ctx.Done():
			for {
				select {
				case env := <-d.queue:
					d.deliver(context.WithoutCancel(ctx), env)
				default:
					return
				}
			}
		}
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

// OrderPlaced enqueues the event. It never blocks: when the queue is full
// the event is dropped and logged.
func (d *Dispatcher) OrderPlaced(_ context.Context, o *order.Order) {
	env := envelope{key: o.ID, payload: encodeOrderPlaced(o)}
	select {
	case d.queue <- env:
	default:
		d.lg.Warn("notification queue full, dropping event",
			zap.String("order_id", o.ID))
	}
}

func (d *Dispatcher) deliver(ctx context.Context, env envelope) {
	for _, s := range d.sinks {
		if err := s.Deliver(ctx, env.key, env.payload); err != nil {
			d.lg.Error("notification delivery failed",
				zap.String("order_id", env.key),
				zap.Error(err))
		}
	}
}
