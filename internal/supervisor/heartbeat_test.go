// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nymproject/directory-relay/internal/logger"
)

type fakeOnlineCounter struct {
	count int
	calls int
}

func (f *fakeOnlineCounter) OnlineCount(context.Context) (int, error) {
	f.calls++
	return f.count, nil
}

func TestHeartbeatWorker_RunTicksAndStops(t *testing.T) {
	counter := &fakeOnlineCounter{count: 3}
	h := newHeartbeatWorker(counter, 10*time.Millisecond, logger.Nop())

	h.Run()
	time.Sleep(35 * time.Millisecond)
	h.Stop()

	assert.GreaterOrEqual(t, counter.calls, 2)
}
