// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session implements the Session Ledger (spec.md §4.3): an
// in-memory, process-lifetime-only record of pending registration/login
// challenges, keyed by the sender tag the challenge was issued to.
package session

import (
	"sync"
	"time"
)

//go:generate mockgen -source=ledger.go -destination=../mock/session_ledger_mock.go -package=mock

// Kind distinguishes a pending registration challenge from a pending
// login challenge (spec.md §4.3).
type Kind string

const (
	KindRegistration Kind = "registration"
	KindLogin        Kind = "login"
)

// Pending is a single outstanding challenge (spec.md §4.3): the username
// and public key under negotiation, the nonce issued to it, and when it
// was issued.
type Pending struct {
	Kind      Kind
	Username  string
	PublicKey string
	Nonce     string
	IssuedAt  time.Time
}

// Ledger is the Session Ledger's interface. Implementations are expected
// to be safe for concurrent use, even though spec.md's reference model
// assumes single-threaded cooperative dispatch — the Go Transport Adapter
// and operator HTTP surface can both reach it concurrently.
type Ledger interface {
	// Insert records a new pending challenge for senderTag, overwriting
	// any previous entry for that tag (spec.md §4.3).
	Insert(senderTag string, pending Pending)

	// Take removes and returns the pending challenge for senderTag.
	// ok is false if there is no entry, or if the entry has outlived the
	// ledger's nonce TTL (SPEC_FULL.md §3) — in both cases the caller
	// must treat the exchange as having no matching challenge.
	Take(senderTag string) (Pending, bool)

	// Discard removes any pending challenge for senderTag without
	// returning it, used when a flow is abandoned (spec.md §4.5/§4.6
	// error paths).
	Discard(senderTag string)

	// PendingCount returns the number of outstanding challenges, for the
	// operator stats surface (SPEC_FULL.md §2.6).
	PendingCount() int
}

// ledger is the in-memory implementation of [Ledger].
type ledger struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]Pending
}

// NewLedger constructs a [Ledger] whose entries expire after ttl
// (SPEC_FULL.md §3, §4 item 1).
func NewLedger(ttl time.Duration) Ledger {
	return &ledger{
		ttl:     ttl,
		entries: make(map[string]Pending),
	}
}

func (l *ledger) Insert(senderTag string, pending Pending) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[senderTag] = pending
}

func (l *ledger) Take(senderTag string) (Pending, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pending, ok := l.entries[senderTag]
	if !ok {
		return Pending{}, false
	}
	delete(l.entries, senderTag)

	if l.ttl > 0 && time.Since(pending.IssuedAt) > l.ttl {
		return Pending{}, false
	}

	return pending, true
}

func (l *ledger) Discard(senderTag string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, senderTag)
}

func (l *ledger) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
