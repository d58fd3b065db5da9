// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package router

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nymproject/directory-relay/internal/directory"
	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/internal/session"
	"github.com/nymproject/directory-relay/models"
)

// handleRegister implements spec.md §4.5 steps 1–2: validate the
// requested username is available and well-formed, mint a nonce, and
// park the pending registration in the Session Ledger keyed by the
// sender tag the request arrived on.
func (r *Router) handleRegister(ctx context.Context, senderTag string, env models.Envelope, log *logger.Logger) {
	var req models.RegisterRequest
	if err := json.Unmarshal([]byte(env.Content), &req); err != nil {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, errStatus("malformed request"), log)
		return
	}

	if !directory.ValidateUsername(req.Username) {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, errStatus("invalid username format"), log)
		return
	}

	if _, err := r.store.GetByUsername(ctx, req.Username); err == nil {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, errStatus("username already in use"), log)
		return
	} else if !errors.Is(err, directory.ErrUserNotFound) {
		log.Error().Err(err).Msg("lookup failed during register")
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, errStatus("internal"), log)
		return
	}

	nonce, err := r.crypto.GenerateNonce()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate registration nonce")
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, errStatus("internal"), log)
		return
	}

	r.ledger.Insert(senderTag, session.Pending{
		Kind:      session.KindRegistration,
		Username:  req.Username,
		PublicKey: req.PublicKey,
		Nonce:     nonce,
		IssuedAt:  time.Now(),
	})

	r.reply(ctx, senderTag, models.ActionChallenge, models.ContextRegistration, models.RegistrationChallenge{Nonce: nonce}, log)
}

// handleRegistrationResponse implements spec.md §4.5 steps 4–6: verify the
// client's signature over the issued nonce, then commit the new user to
// the Directory Store.
func (r *Router) handleRegistrationResponse(ctx context.Context, senderTag string, env models.Envelope, log *logger.Logger) {
	pending, ok := r.ledger.Take(senderTag)
	if !ok || pending.Kind != session.KindRegistration {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, errStatus("no pending registration for sender"), log)
		return
	}

	var resp models.RegistrationResponse
	if err := json.Unmarshal([]byte(env.Content), &resp); err != nil || resp.Nonce != pending.Nonce || resp.Username != pending.Username {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, errStatus("challenge mismatch"), log)
		return
	}

	// spec.md §4.5 step 5 / testable property 2: the signature binds the
	// issued nonce's raw bytes alone, not the surrounding request fields.
	if !r.crypto.Verify(pending.PublicKey, []byte(pending.Nonce), env.Signature) {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, errStatus("signature verification failed"), log)
		return
	}

	if err := r.store.Register(ctx, pending.Username, pending.PublicKey); err != nil {
		status := "internal"
		if errors.Is(err, directory.ErrUsernameTaken) {
			status = "username already in use"
		}
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, errStatus(status), log)
		return
	}

	if err := r.store.UpdateField(ctx, pending.Username, models.FieldSenderTag, senderTag); err != nil {
		log.Error().Err(err).Msg("failed to bind sender tag after registration")
	}

	r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextRegistration, "success", log)
}

// handleLogin implements spec.md §4.6 steps 1–2.
func (r *Router) handleLogin(ctx context.Context, senderTag string, env models.Envelope, log *logger.Logger) {
	var req models.LoginRequest
	if err := json.Unmarshal([]byte(env.Content), &req); err != nil {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextLogin, errStatus("malformed request"), log)
		return
	}

	user, err := r.store.GetByUsername(ctx, req.Username)
	if errors.Is(err, directory.ErrUserNotFound) {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextLogin, errStatus("user not found"), log)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("lookup failed during login")
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextLogin, errStatus("internal"), log)
		return
	}

	nonce, err := r.crypto.GenerateNonce()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate login nonce")
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextLogin, errStatus("internal"), log)
		return
	}

	r.ledger.Insert(senderTag, session.Pending{
		Kind:      session.KindLogin,
		Username:  user.Username,
		PublicKey: user.PublicKey,
		Nonce:     nonce,
		IssuedAt:  time.Now(),
	})

	r.reply(ctx, senderTag, models.ActionChallenge, models.ContextLogin, models.LoginChallenge{Nonce: nonce}, log)
}

// handleLoginResponse implements spec.md §4.6 steps 4–6: verify the
// challenge signature and rebind the user's sender tag to the one this
// message arrived on (spec.md §3).
func (r *Router) handleLoginResponse(ctx context.Context, senderTag string, env models.Envelope, log *logger.Logger) {
	pending, ok := r.ledger.Take(senderTag)
	if !ok || pending.Kind != session.KindLogin {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextLogin, errStatus("no pending login for sender"), log)
		return
	}

	var resp models.LoginResponse
	if err := json.Unmarshal([]byte(env.Content), &resp); err != nil || resp.Nonce != pending.Nonce || resp.Username != pending.Username {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextLogin, errStatus("challenge mismatch"), log)
		return
	}

	// spec.md §4.6 / testable property 2: verify over the issued nonce's
	// raw bytes alone, matching the registration flow.
	if !r.crypto.Verify(pending.PublicKey, []byte(pending.Nonce), env.Signature) {
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextLogin, errStatus("signature verification failed"), log)
		return
	}

	if err := r.store.UpdateField(ctx, pending.Username, models.FieldSenderTag, senderTag); err != nil {
		log.Error().Err(err).Msg("failed to rebind sender tag after login")
		r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextLogin, errStatus("internal"), log)
		return
	}

	r.reply(ctx, senderTag, models.ActionChallengeResponse, models.ContextLogin, "success", log)
}

// handleQuery implements spec.md §4.7: a plain directory lookup. It
// requires no signature and never rebinds a sender tag.
func (r *Router) handleQuery(ctx context.Context, senderTag string, env models.Envelope, log *logger.Logger) {
	var req models.QueryRequest
	if err := json.Unmarshal([]byte(env.Content), &req); err != nil {
		r.reply(ctx, senderTag, models.ActionQueryResponse, models.ContextQuery, models.QueryResult{Error: errStatus("malformed request")}, log)
		return
	}

	user, err := r.store.GetByUsername(ctx, req.Username)
	if errors.Is(err, directory.ErrUserNotFound) {
		r.reply(ctx, senderTag, models.ActionQueryResponse, models.ContextQuery, models.QueryResult{Username: req.Username, Error: "No user found"}, log)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("lookup failed during query")
		r.reply(ctx, senderTag, models.ActionQueryResponse, models.ContextQuery, models.QueryResult{Username: req.Username, Error: errStatus("internal")}, log)
		return
	}

	r.reply(ctx, senderTag, models.ActionQueryResponse, models.ContextQuery, models.QueryResult{Username: user.Username, PublicKey: user.PublicKey}, log)
}

// handleSend implements spec.md §4.8: verify the claimed sender's
// signature over the request content, rebind their sender tag to the one
// this message arrived on (mix return-path tags may rotate between
// messages), then relay the body to the recipient's last known tag.
func (r *Router) handleSend(ctx context.Context, senderTag string, env models.Envelope, log *logger.Logger) {
	var req models.SendRequest
	if err := json.Unmarshal([]byte(env.Content), &req); err != nil {
		r.reply(ctx, senderTag, models.ActionSendResponse, models.ContextChat, errStatus("invalid JSON in content"), log)
		return
	}

	if req.Sender == "" || req.Recipient == "" {
		r.reply(ctx, senderTag, models.ActionSendResponse, models.ContextChat, errStatus("missing 'sender' or 'recipient' field"), log)
		return
	}

	sender, err := r.store.GetByUsername(ctx, req.Sender)
	if errors.Is(err, directory.ErrUserNotFound) {
		r.reply(ctx, senderTag, models.ActionSendResponse, models.ContextChat, errStatus("unrecognized sender username"), log)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("lookup failed during send")
		r.reply(ctx, senderTag, models.ActionSendResponse, models.ContextChat, errStatus("internal"), log)
		return
	}

	if !r.crypto.Verify(sender.PublicKey, []byte(env.Content), env.Signature) {
		r.reply(ctx, senderTag, models.ActionSendResponse, models.ContextChat, errStatus("invalid signature"), log)
		return
	}

	if err := r.store.UpdateField(ctx, sender.Username, models.FieldSenderTag, senderTag); err != nil {
		log.Error().Err(err).Msg("failed to rebind sender tag during send")
	}

	recipient, err := r.store.GetByUsername(ctx, req.Recipient)
	if errors.Is(err, directory.ErrUserNotFound) {
		r.reply(ctx, senderTag, models.ActionSendResponse, models.ContextChat, errStatus("recipient not found"), log)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("lookup failed during send")
		r.reply(ctx, senderTag, models.ActionSendResponse, models.ContextChat, errStatus("internal"), log)
		return
	}
	if recipient.SenderTag == "" {
		r.reply(ctx, senderTag, models.ActionSendResponse, models.ContextChat, errStatus("recipient unreachable"), log)
		return
	}

	forward := models.ForwardedMessage{Sender: sender.Username, Body: req.Body}
	if req.SenderPublicKey != "" {
		forward.SenderPublicKey = req.SenderPublicKey
	}
	r.reply(ctx, recipient.SenderTag, models.ActionIncomingMessage, models.ContextChat, forward, log)

	r.reply(ctx, senderTag, models.ActionSendResponse, models.ContextChat, "success", log)
}
