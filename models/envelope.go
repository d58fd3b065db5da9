// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package models holds the wire and domain types shared by the transport,
// router, directory, and session packages.
package models

// Frame is the outer transport envelope exchanged with the mix client
// (spec.md §4.9, §6). Message is itself a JSON-encoded [Envelope], carried
// as a string so the inner structure stays opaque to the Transport Adapter.
type Frame struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	SenderTag string `json:"senderTag,omitempty"`
}

// Envelope is the inner, authenticated message shape (spec.md §4.4,
// "encapsulated envelope"). Content is the raw string over which Signature
// was computed — never a structurally re-encoded form of it, since JSON
// re-encoding is not guaranteed to be byte-stable.
type Envelope struct {
	Action    string `json:"action"`
	Content   string `json:"content"`
	Context   string `json:"context,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// Frame types exchanged with the mix client (spec.md §4.9, §6).
// FrameTypeReply is the type every Message Router reply carries
// (spec.md §4.4 "outer = {\"type\":\"reply\",...}"); FrameTypeSend
// remains for lower-level adapter traffic that isn't itself a router
// reply. FrameTypeReceived marks an inbound notification, and the
// FrameTypeSelfAddress* pair is the connect-time handshake.
const (
	FrameTypeSend          = "send"
	FrameTypeReply         = "reply"
	FrameTypeReceived      = "received"
	FrameTypeSelfAddress   = "selfAddress"
	FrameTypeSelfAddressOK = "selfAddressResponse"
)
