// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package router implements the Message Router (spec.md §4.4–§4.8): the
// dispatch table translating inbound [models.Frame] values from the
// Transport Adapter into directory/session operations, and building the
// signed reply frames sent back out.
package router

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nymproject/directory-relay/internal/crypto"
	"github.com/nymproject/directory-relay/internal/directory"
	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/internal/session"
	"github.com/nymproject/directory-relay/internal/utils"
	"github.com/nymproject/directory-relay/models"
)

// sender is the minimal outbound capability the router needs from the
// Transport Adapter; it is satisfied by [transport.Adapter].
type sender interface {
	Send(ctx context.Context, frame models.Frame) error
}

// Router dispatches inbound frames to the directory and session
// components and sends back signed replies (spec.md §4.4).
type Router struct {
	store   directory.Store
	ledger  session.Ledger
	crypto  crypto.Service
	adapter sender
	log     *logger.Logger
	ids     *utils.UUIDGenerator
}

// New constructs a [Router] wired to its collaborators.
func New(store directory.Store, ledger session.Ledger, svc crypto.Service, adapter sender, log *logger.Logger) *Router {
	return &Router{
		store:   store,
		ledger:  ledger,
		crypto:  svc,
		adapter: adapter,
		log:     log,
		ids:     utils.NewUUIDGenerator(),
	}
}

// Dispatch is registered as the Transport Adapter's receive callback. It
// decodes frame.Message into an [models.Envelope] and routes it by
// action; actions outside the closed dispatch table are logged and
// dropped (spec.md §4.4).
func (r *Router) Dispatch(frame models.Frame) {
	traceID := r.ids.Generate()
	ctx := context.WithValue(context.Background(), utils.TraceIDCtxKey, traceID)
	log := r.log.GetChildLogger()

	var env models.Envelope
	if err := json.Unmarshal([]byte(frame.Message), &env); err != nil {
		log.Warn().Str("trace_id", traceID).Err(err).Msg("dropping frame with unparsable envelope")
		return
	}

	log = &logger.Logger{Logger: log.With().Str("trace_id", traceID).Str("action", env.Action).Logger()}

	switch env.Action {
	case models.ActionRegister:
		r.handleRegister(ctx, frame.SenderTag, env, log)
	case models.ActionRegistrationResponse:
		r.handleRegistrationResponse(ctx, frame.SenderTag, env, log)
	case models.ActionLogin:
		r.handleLogin(ctx, frame.SenderTag, env, log)
	case models.ActionLoginResponse:
		r.handleLoginResponse(ctx, frame.SenderTag, env, log)
	case models.ActionQuery:
		r.handleQuery(ctx, frame.SenderTag, env, log)
	case models.ActionSend:
		r.handleSend(ctx, frame.SenderTag, env, log)
	default:
		log.Info().Msg("dropping frame with unrecognized action")
	}
}

// reply signs content with the server's own key and sends it back to
// destTag as a new envelope (spec.md §4.4 "sendEncapsulatedReply").
// wireContext is the Envelope.Context value from spec.md §4.4's dispatch
// table (e.g. "registration", "chat"). content is either a plain string —
// sent verbatim as Content, for the literal "success"/"error: <reason>"
// values spec.md §4.5 step 5/§4.6/§4.8 step 8 require — or any other
// value, which is JSON-marshaled first (spec.md §4.5 step 3's
// `{"nonce": <hex>}` form and similar structured payloads).
func (r *Router) reply(ctx context.Context, destTag, action, wireContext string, content any, log *logger.Logger) {
	var contentBytes []byte
	if s, ok := content.(string); ok {
		contentBytes = []byte(s)
	} else {
		b, err := json.Marshal(content)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal reply content")
			return
		}
		contentBytes = b
	}

	sig, err := r.crypto.Sign(contentBytes)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign reply content")
		return
	}

	env := models.Envelope{Action: action, Content: string(contentBytes), Context: wireContext, Signature: sig}
	envBytes, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal reply envelope")
		return
	}

	frame := models.Frame{Type: models.FrameTypeReply, Message: string(envBytes), SenderTag: destTag}
	if err := r.adapter.Send(ctx, frame); err != nil {
		log.Error().Err(err).Msg("failed to send reply frame")
	}
}

func errStatus(reason string) string { return fmt.Sprintf("error: %s", reason) }
