// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nymproject/directory-relay/internal/logger"
)

// MixClient manages the lifecycle of the mix-client sidecar binary: it
// initializes the client's local config directory if missing, starts the
// process, and implements [workers.Worker] by monitoring it and
// restarting it with bounded backoff if it exits unexpectedly (spec.md
// §5 "mix-client supervision", SPEC_FULL.md §3). Adapted from the
// original implementation's init/start/monitor functions.
type MixClient struct {
	binary     string
	clientID   string
	clientHost string
	backoffMin time.Duration
	backoffMax time.Duration
	log        *logger.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stopped bool
	done    chan struct{}
}

// NewMixClient constructs a [MixClient]. binary is the path to the
// nym-client executable; it is looked up on PATH if not absolute.
func NewMixClient(binary, clientID, clientHost string, backoffMin, backoffMax time.Duration, log *logger.Logger) *MixClient {
	return &MixClient{
		binary:     binary,
		clientID:   clientID,
		clientHost: clientHost,
		backoffMin: backoffMin,
		backoffMax: backoffMax,
		log:        log,
		done:       make(chan struct{}),
	}
}

// EnsureInitialized runs `nym-client init` unless a config directory for
// clientID already exists, mirroring the original implementation's
// initialize_nym_client.
func (m *MixClient) EnsureInitialized(ctx context.Context) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("supervisor: resolve home dir: %w", err)
	}

	clientDir := filepath.Join(home, ".nym", "clients", m.clientID)
	if _, err := os.Stat(clientDir); err == nil {
		m.log.Info().Str("client_id", m.clientID).Msg("existing mix-client config found, skipping init")
		return nil
	}

	m.log.Info().Str("client_id", m.clientID).Msg("no existing mix-client config, initializing")
	cmd := exec.CommandContext(ctx, m.binary, "init", "--id", m.clientID, "--host", m.clientHost)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("supervisor: mix-client init failed: %w (output: %s)", err, out)
	}

	return nil
}

func (m *MixClient) start() error {
	cmd := exec.Command(m.binary, "run", "--id", m.clientID)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("supervisor: start mix-client: %w", err)
	}

	m.mu.Lock()
	m.cmd = cmd
	m.mu.Unlock()

	m.log.Info().Str("client_id", m.clientID).Int("pid", cmd.Process.Pid).Msg("mix-client started")
	return nil
}

// Run implements [workers.Worker]: starts the mix client and its
// monitor-and-restart loop in its own goroutine and returns immediately,
// per [workers.Worker]'s convention for long-running work. The loop
// restarts the process with exponential backoff if it exits, until Stop
// is called.
func (m *MixClient) Run() {
	go m.monitorLoop()
}

func (m *MixClient) monitorLoop() {
	backoff := m.backoffMin
	for {
		select {
		case <-m.done:
			return
		default:
		}

		if err := m.start(); err != nil {
			m.log.Error().Err(err).Msg("mix-client failed to start, will retry")
			select {
			case <-m.done:
				return
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, m.backoffMax)
			continue
		}

		backoff = m.backoffMin

		m.mu.Lock()
		cmd := m.cmd
		m.mu.Unlock()

		err := cmd.Wait()

		m.mu.Lock()
		stopped := m.stopped
		m.mu.Unlock()
		if stopped {
			return
		}

		m.log.Error().Err(err).Msg("mix-client exited unexpectedly, restarting")
		select {
		case <-m.done:
			return
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff, m.backoffMax)
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

// Stop sends SIGINT to the running mix-client and waits up to
// gracefulTimeout for it to exit before the process is abandoned
// (spec.md §5's bounded graceful shutdown).
func (m *MixClient) Stop(gracefulTimeout time.Duration) {
	m.mu.Lock()
	m.stopped = true
	cmd := m.cmd
	m.mu.Unlock()

	close(m.done)

	if cmd == nil || cmd.Process == nil {
		return
	}

	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		m.log.Warn().Err(err).Msg("failed to signal mix-client for graceful shutdown")
		return
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	select {
	case <-exited:
		m.log.Info().Msg("mix-client shut down gracefully")
	case <-time.After(gracefulTimeout):
		m.log.Warn().Msg("mix-client did not exit within grace period, abandoning")
	}
}
