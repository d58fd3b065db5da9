// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package supervisor

import (
	"context"
	"time"

	"github.com/nymproject/directory-relay/internal/logger"
)

// onlineCounter is the minimal presence-bus capability the heartbeat
// worker needs; satisfied by [presence.Bus].
type onlineCounter interface {
	OnlineCount(ctx context.Context) (int, error)
}

// heartbeatWorker implements [workers.Worker], logging the current
// online-user count on a fixed interval while the presence bus is
// active (SPEC_FULL.md §3, adapted from the original implementation's
// presence_heartbeat coroutine).
type heartbeatWorker struct {
	bus      onlineCounter
	interval time.Duration
	log      *logger.Logger
	done     chan struct{}
}

func newHeartbeatWorker(bus onlineCounter, interval time.Duration, log *logger.Logger) *heartbeatWorker {
	return &heartbeatWorker{bus: bus, interval: interval, log: log, done: make(chan struct{})}
}

// Run starts the heartbeat loop in its own goroutine and returns
// immediately, per [workers.Worker]'s convention for long-running work.
func (h *heartbeatWorker) Run() {
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				count, err := h.bus.OnlineCount(ctx)
				cancel()
				if err != nil {
					h.log.Warn().Err(err).Msg("presence heartbeat: failed to count online users")
					continue
				}
				h.log.Info().Int("online_users", count).Msg("presence heartbeat")
			}
		}
	}()
}

func (h *heartbeatWorker) Stop() { close(h.done) }
