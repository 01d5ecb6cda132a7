package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestNewRefreshWorker_NegativeIntervalDisables(t *testing.T) {
	w := NewRefreshWorker(&countingRefresher{}, -1, logger.Nop())

	assert.Nil(t, w)
	assert.Empty(t, NewWorkers(w).workers)
}

func TestNewRefreshWorker_DefaultInterval(t *testing.T) {
	w := NewRefreshWorker(&countingRefresher{}, 0, logger.Nop())

	require.NotNil(t, w)
	assert.Equal(t, defaultRefreshInterval, w.(*refreshWorker).interval)
}

func TestRefreshWorker_RefreshesOnTick(t *testing.T) {
	refresher := &countingRefresher{}
	w := NewRefreshWorker(refresher, 5*time.Millisecond, logger.Nop())

	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestRefreshWorker_KeepsRunningAfterErrors(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("ledger down")}
	w := NewRefreshWorker(refresher, 5*time.Millisecond, logger.Nop())

	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestRefreshWorker_StopHaltsRefreshes(t *testing.T) {
	refresher := &countingRefresher{}
	w := NewRefreshWorker(refresher, 5*time.Millisecond, logger.Nop())

	w.Start(context.Background())
	require.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, time.Second, time.Millisecond)
	w.Stop()

	stopped := refresher.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, refresher.calls.Load())

	// повторный Stop безопасен
	w.Stop()
}

func TestRefreshWorker_ContextCancelStops(t *testing.T) {
	refresher := &countingRefresher{}
	w := NewRefreshWorker(refresher, 5*time.Millisecond, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	w.Start(ctx)
	cancel()
	w.Stop()

	calls := refresher.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, refresher.calls.Load())
}

func TestRefreshWorker_RestartReplacesLoop(t *testing.T) {
	refresher := &countingRefresher{}
	w := NewRefreshWorker(refresher, 5*time.Millisecond, logger.Nop())

	w.Start(context.Background())
	w.Start(context.Background())
	defer w.Stop()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, time.Second, time.Millisecond)
}
