// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-multisig-keeper/internal/logger"
)

const defaultRefreshInterval = time.Minute

type refreshWorker struct {
	refresher Refresher
	interval  time.Duration
	logger    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefreshWorker creates a worker that calls refresher.Refresh every
// interval. A zero interval defaults to one minute; a negative interval
// returns nil, which NewWorkers skips.
func NewRefreshWorker(refresher Refresher, interval time.Duration, logger *logger.Logger) Worker {
	if interval < 0 {
		return nil
	}
	if interval == 0 {
		interval = defaultRefreshInterval
	}

	return &refreshWorker{
		refresher: refresher,
		interval:  interval,
		logger:    logger.WithComponent("refresh-worker"),
	}
}

// Start implements Worker. It stops any previously running loop, then
// launches a goroutine that refreshes on every tick. A refresh is bounded by
// the interval so a slow ledger never stacks up ticks.
func (w *refreshWorker) Start(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("refresh worker started")

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				w.refresh(jobCtx)
			}
		}
	}()
}

// Stop implements Worker.
func (w *refreshWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		w.logger.Info().Msg("refresh worker stopping")
	}
	w.wg.Wait()
}

func (w *refreshWorker) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	start := time.Now()
	if err := w.refresher.Refresh(ctx); err != nil {
		w.logger.Err(err).Msg("vault refresh finished with errors")
		return
	}
	w.logger.Debug().Dur("took", time.Since(start)).Msg("vaults refreshed")
}
