// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adminapi implements the optional read-only operator HTTP
// surface (SPEC_FULL.md §2.6): a liveness probe and a coarse stats
// endpoint. It never exposes usernames, public keys, or sender tags —
// only counts — and never accepts a write.
package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nymproject/directory-relay/internal/directory"
	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/internal/session"
)

// PresenceStatus is the minimal presence-bus view the admin surface
// reports; satisfied by [presence.Bus] without importing it directly, so
// the server can run with presence disabled.
type PresenceStatus interface {
	OnlineCount(ctx context.Context) (int, error)
}

// Transport is the minimal connectivity view the admin surface reports.
type Transport interface {
	Connected() bool
}

// Server is the admin HTTP surface. The supervisor builds one only when an
// admin address is configured (SPEC_FULL.md §2.6).
type Server struct {
	addr      string
	store     directory.Store
	ledger    session.Ledger
	transport Transport
	presence  PresenceStatus
	log       *logger.Logger

	httpServer *http.Server
}

// New builds a [Server] bound to addr. presence may be nil when the
// presence bus is disabled.
func New(addr string, store directory.Store, ledger session.Ledger, transport Transport, presence PresenceStatus, log *logger.Logger) *Server {
	s := &Server{
		addr:      addr,
		store:     store,
		ledger:    ledger,
		transport: transport,
		presence:  presence,
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/stats", s.handleStats)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Run starts serving until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type healthzResponse struct {
	OK                 bool `json:"ok"`
	TransportConnected bool `json:"transportConnected"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthzResponse{OK: true, TransportConnected: s.transport.Connected()}
	writeJSON(w, http.StatusOK, resp)
}

type statsResponse struct {
	DirectoryUserCount int  `json:"directoryUserCount"`
	PendingChallenges  int  `json:"pendingChallenges"`
	PresenceEnabled    bool `json:"presenceEnabled"`
	OnlineUserCount    int  `json:"onlineUserCount,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("admin stats: directory count failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := statsResponse{
		DirectoryUserCount: count,
		PendingChallenges:  s.ledger.PendingCount(),
		PresenceEnabled:    s.presence != nil,
	}

	if s.presence != nil {
		online, err := s.presence.OnlineCount(r.Context())
		if err != nil {
			s.log.Warn().Err(err).Msg("admin stats: presence online count failed")
		} else {
			resp.OnlineUserCount = online
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
