// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package supervisor is the Control Supervisor (SPEC_FULL.md §3): it
// acquires the operator password, launches and monitors the mix-client
// sidecar, wires the directory/session/crypto/transport/router
// components together, optionally starts the presence bus and admin
// HTTP surface, and owns graceful shutdown on SIGINT/SIGTERM. Adapted
// from the original implementation's mainApp.py bootstrap sequence in
// the teacher's server-lifecycle idiom.
package supervisor

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/nymproject/directory-relay/internal/adminapi"
	"github.com/nymproject/directory-relay/internal/config"
	"github.com/nymproject/directory-relay/internal/crypto"
	"github.com/nymproject/directory-relay/internal/directory"
	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/internal/presence"
	"github.com/nymproject/directory-relay/internal/router"
	"github.com/nymproject/directory-relay/internal/session"
	"github.com/nymproject/directory-relay/internal/transport"
	"github.com/nymproject/directory-relay/internal/workers"
)

// gracefulShutdownTimeout bounds how long the mix-client subprocess gets
// to shut down cleanly (spec.md §5).
const gracefulShutdownTimeout = 5 * time.Second

// Supervisor owns the process lifecycle of the directory and relay
// server.
type Supervisor struct {
	cfg *config.StructuredConfig
	log *logger.Logger

	db        *directory.DB
	store     directory.Store
	cryptoSvc crypto.Service
	ledger    session.Ledger
	adapter   transport.Adapter
	msgRouter *router.Router
	mixClient *MixClient
	bus       *presence.Bus
	adminSrv  *adminapi.Server
	heartbeat *heartbeatWorker
}

// New wires every component per cfg. It opens the directory database,
// loads or generates the server's signing key, and constructs (but does
// not start) the mix client, transport adapter, router, and optional
// presence bus and admin surface.
func New(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*Supervisor, error) {
	password, err := readSecret(cfg.Crypto.SecretPath)
	if err != nil {
		return nil, err
	}

	privateKey, err := crypto.LoadOrGenerateKeyPair(cfg.Crypto.KeysDir)
	if err != nil {
		return nil, fmt.Errorf("supervisor: load signing key: %w", err)
	}

	cryptoSvc, err := crypto.NewService(password, privateKey)
	if err != nil {
		return nil, fmt.Errorf("supervisor: construct crypto service: %w", err)
	}

	db, err := directory.Open(ctx, cfg.Storage.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("supervisor: open directory db: %w", err)
	}

	store, err := directory.NewStore(ctx, db, cryptoSvc, log)
	if err != nil {
		return nil, fmt.Errorf("supervisor: construct directory store: %w", err)
	}

	ledger := session.NewLedger(cfg.Crypto.NonceTTL)

	adapter := transport.NewAdapter(cfg.Mix.WebsocketURL, cfg.Mix.AddressFile, cfg.Mix.ReconnectBackoffMin, cfg.Mix.ReconnectBackoffMax, log)
	msgRouter := router.New(store, ledger, cryptoSvc, adapter, log)
	adapter.OnReceive(msgRouter.Dispatch)

	mixClient := NewMixClient("nym-client", cfg.Mix.ClientID, cfg.Mix.ClientHost, cfg.Mix.ReconnectBackoffMin, cfg.Mix.ReconnectBackoffMax, log)

	s := &Supervisor{
		cfg:       cfg,
		log:       log,
		db:        db,
		store:     store,
		cryptoSvc: cryptoSvc,
		ledger:    ledger,
		adapter:   adapter,
		msgRouter: msgRouter,
		mixClient: mixClient,
	}

	bus, err := presence.Connect(ctx, cfg.Presence.RedisURL, log)
	if err != nil {
		log.Warn().Err(err).Msg("presence bus unavailable, continuing without it")
	} else {
		s.bus = bus
	}

	if s.bus != nil {
		s.heartbeat = newHeartbeatWorker(s.bus, cfg.Presence.HeartbeatInterval, log)
	}

	if cfg.Admin.Address != "" {
		var presenceStatus adminapi.PresenceStatus
		if s.bus != nil {
			presenceStatus = s.bus
		}
		s.adminSrv = adminapi.New(cfg.Admin.Address, store, ledger, adapter, presenceStatus, log)
	}

	return s, nil
}

// Run starts the mix client, connects the transport adapter, starts the
// optional presence heartbeat and admin surface, and blocks until a
// SIGINT/SIGTERM is received, at which point every component is shut
// down within gracefulShutdownTimeout (spec.md §5).
func (s *Supervisor) Run(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.mixClient.EnsureInitialized(ctx); err != nil {
		return err
	}
	s.mixClient.Run()

	// The mix client needs a moment to come up before the websocket
	// endpoint it exposes is dialable, mirroring the original
	// implementation's fixed post-start delay.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
	}

	if err := s.adapter.Connect(ctx); err != nil {
		s.log.Error().Err(err).Msg("initial mix-client connection failed, adapter will keep retrying")
	}

	var background []workers.Worker
	if s.heartbeat != nil {
		background = append(background, s.heartbeat)
	}
	workers.NewWorkers(background...).Run()

	if s.adminSrv != nil {
		go func() {
			if err := s.adminSrv.Run(ctx); err != nil {
				s.log.Error().Err(err).Msg("admin HTTP server stopped with error")
			}
		}()
	}

	s.log.Info().Msg("directory and relay server running")
	<-ctx.Done()
	s.log.Info().Msg("shutdown signal received")

	return s.shutdown()
}

func (s *Supervisor) shutdown() error {
	if s.heartbeat != nil {
		s.heartbeat.Stop()
	}

	s.mixClient.Stop(gracefulShutdownTimeout)

	if err := s.adapter.Close(); err != nil {
		s.log.Warn().Err(err).Msg("error closing transport adapter")
	}

	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			s.log.Warn().Err(err).Msg("error closing presence bus")
		}
	}

	if err := s.db.Close(); err != nil {
		s.log.Warn().Err(err).Msg("error closing directory database")
	}

	s.log.Info().Msg("shutdown complete")
	return nil
}
