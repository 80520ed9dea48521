// Package notify delivers order-placed events to external sinks (Kafka, the
// admin log). Delivery is fire-and-forget: checkout never waits on a sink
// and sink failures are logged, not returned.
package notify

import (
	"context"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-api/internal/domain/order"
)

// Sink delivers one encoded order-placed event. The key is the order ID.
type Sink interface {
	Deliver(ctx context.Context, key string, payload []byte) error
}

// encodeOrderPlaced builds the event payload. Encoded by hand with jx so the
// wire format is explicit and stable regardless of domain struct changes.
func encodeOrderPlaced(o *order.Order) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("event", func(e *jx.Encoder) { e.Str("order.placed") })
		e.Field("orderId", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("userId", func(e *jx.Encoder) { e.Str(o.UserID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("total", func(e *jx.Encoder) { e.Str(o.Total.String()) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						e.Field("unitPrice", func(e *jx.Encoder) { e.Str(it.UnitPrice.String()) })
					})
				}
			})
		})
	})
	return e.Bytes()
}
