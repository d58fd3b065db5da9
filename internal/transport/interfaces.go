// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package transport implements the Transport Adapter (spec.md §4.9): a
// pure duplex conduit to the mix-client sidecar. It never inspects the
// action or content of a [models.Frame] — that is the Message Router's
// job — and limits itself to the selfAddress handshake, persisting the
// learned address, sending frames, and invoking a registered callback for
// each received frame.
package transport

import (
	"context"

	"github.com/nymproject/directory-relay/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_adapter_mock.go -package=mock

// Adapter is the duplex connection to the running mix client.
type Adapter interface {
	// Connect dials the mix client, performs the selfAddress handshake,
	// persists the learned address (spec.md §4.9, §6), and starts the
	// background receive loop. It returns once the handshake completes.
	Connect(ctx context.Context) error

	// Send transmits frame to the mix client.
	Send(ctx context.Context, frame models.Frame) error

	// OnReceive registers the callback invoked for every inbound frame
	// the mix client delivers. Only one callback may be registered; a
	// later call replaces an earlier one.
	OnReceive(func(models.Frame))

	// SelfAddress returns the mix address this server is reachable at,
	// once learned. Empty before the handshake completes.
	SelfAddress() string

	// Connected reports whether the adapter currently has a live
	// connection to the mix client.
	Connected() bool

	// Close terminates the connection and stops the receive loop.
	Close() error
}
