package notify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/order"
)

type captureSink struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *captureSink) Deliver(_ context.Context, _ string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}

func testOrder() *order.Order {
	return &order.Order{
		ID:     "o1",
		UserID: "u1",
		Items: []order.Item{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		},
		Total:     decimal.RequireFromString("19.98"),
		Status:    order.StatusPending,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEncodeOrderPlaced_ValidJSON(t *testing.T) {
	payload := encodeOrderPlaced(testOrder())

	var decoded struct {
		Event     string `json:"event"`
		OrderID   string `json:"orderId"`
		UserID    string `json:"userId"`
		Status    string `json:"status"`
		Total     string `json:"total"`
		CreatedAt string `json:"createdAt"`
		Items     []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
			UnitPrice string `json:"unitPrice"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "order.placed", decoded.Event)
	assert.Equal(t, "o1", decoded.OrderID)
	assert.Equal(t, "u1", decoded.UserID)
	assert.Equal(t, "pending", decoded.Status)
	assert.Equal(t, "19.98", decoded.Total)
	assert.Equal(t, "2025-06-01T12:00:00Z", decoded.CreatedAt)
	require.Len(t, decoded.Items, 1)
	assert.Equal(t, 2, decoded.Items[0].Quantity)
	assert.Equal(t, "9.99", decoded.Items[0].UnitPrice)
}

func TestDispatcher_DeliversToAllSinks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s1 := &captureSink{}
	s2 := &captureSink{}
	d := NewDispatcher(zap.NewNop(), s1, s2)
	go d.Run(ctx)

	d.OrderPlaced(ctx, testOrder())

	require.Eventually(t, func() bool {
		return s1.count() == 1 && s2.count() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	d.Wait()
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := &captureSink{}
	d := NewDispatcher(zap.NewNop(), sink)

	// Enqueue before the worker starts, then shut down immediately: the
	// queued events must still go out.
	for range 5 {
		d.OrderPlaced(ctx, testOrder())
	}
	cancel()
	go d.Run(ctx)
	d.Wait()

	assert.Equal(t, 5, sink.count())
}
