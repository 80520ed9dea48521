package retention

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/storefront-api/internal/domain/order"
)

type mockOrderRepo struct {
	mu      sync.Mutex
	cutoffs []time.Time
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs = append(m.cutoffs, cutoff)
	return 3, nil
}

func (m *mockOrderRepo) calls() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.cutoffs...)
}

func TestWorker_SweepsWithWindowCutoff(t *testing.T) {
	repo := &mockOrderRepo{}
	w := NewWorker(repo, zap.NewNop(), 30*24*time.Hour, time.Millisecond)
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(repo.calls()) >= 2
	}, time.Second, time.Millisecond)
	cancel()
	<-done

	want := fixed.Add(-30 * 24 * time.Hour)
	assert.Equal(t, want, repo.calls()[0])
}

func TestWorker_StopsOnCancel(t *testing.T) {
	repo := &mockOrderRepo{}
	w := NewWorker(repo, zap.NewNop(), time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
	assert.Empty(t, repo.calls())
}
