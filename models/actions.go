// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Action names recognized by the Message Router's inbound dispatch table
// (spec.md §4.4). Any other action is logged and dropped.
const (
	ActionRegister             = "register"
	ActionRegistrationResponse = "registrationResponse"
	ActionLogin                = "login"
	ActionLoginResponse        = "loginResponse"
	ActionQuery                = "query"
	ActionSend                 = "send"
)

// Action names the Message Router uses on its own outbound replies
// (spec.md §4.5 steps 3/5, §4.6, §4.7, §4.8 steps 7–8). The registration
// and login handshakes share "challenge"/"challengeResponse" for their
// nonce offer and final result, distinguished by Envelope.Context rather
// than by a separate pair of action names per flow.
const (
	ActionChallenge         = "challenge"
	ActionChallengeResponse = "challengeResponse"
	ActionQueryResponse     = "queryResponse"
	ActionIncomingMessage   = "incomingMessage"
	ActionSendResponse      = "sendResponse"
)

// Context values carried on the inner [Envelope] (spec.md §4.4's dispatch
// table), letting a client distinguish e.g. a login challenge from a
// registration challenge even though both share action "challenge".
const (
	ContextRegistration = "registration"
	ContextLogin        = "login"
	ContextQuery        = "query"
	ContextChat         = "chat"
)

// RegisterRequest is the Content payload of a register [Envelope]
// (spec.md §4.5 step 1): a new username ("usernym" on the wire, per
// spec.md §4.5/§8 scenarios S1–S3) and its ECDSA P-256 public key,
// hex-encoded.
type RegisterRequest struct {
	Username  string `json:"usernym"`
	PublicKey string `json:"publicKey"`
}

// RegistrationChallenge is the Content payload the server sends back to
// prompt for proof of key possession (spec.md §4.5 step 2): a freshly
// minted nonce the client must sign.
type RegistrationChallenge struct {
	Nonce string `json:"nonce"`
}

// RegistrationResponse is the Content payload of a registrationResponse
// [Envelope] (spec.md §4.5 step 4): echoes the issued nonce back so the
// server can bind the accompanying Envelope.Signature to the specific
// challenge it was asked to prove. Per spec.md §4.5 step 5/testable
// property 2, the signature itself must verify over Nonce's raw UTF-8
// bytes alone, not over this struct's encoded form.
type RegistrationResponse struct {
	Username string `json:"username"`
	Nonce    string `json:"nonce"`
}

// LoginRequest is the Content payload of a login [Envelope]
// (spec.md §4.6 step 1): identifies the username ("usernym" on the wire,
// mirroring register) requesting a challenge.
type LoginRequest struct {
	Username string `json:"usernym"`
}

// LoginChallenge mirrors [RegistrationChallenge] for the login flow
// (spec.md §4.6 step 2).
type LoginChallenge struct {
	Nonce string `json:"nonce"`
}

// LoginResponse is the Content payload of a loginResponse [Envelope]
// (spec.md §4.6 step 4), mirroring [RegistrationResponse]: the
// accompanying Envelope.Signature proves possession of the username's
// registered private key over this exact nonce's raw bytes.
type LoginResponse struct {
	Username string `json:"username"`
	Nonce    string `json:"nonce"`
}

// QueryRequest is the Content payload of a query [Envelope]
// (spec.md §4.7 step 1): asks the directory for a username's public key.
type QueryRequest struct {
	Username string `json:"username"`
}

// QueryResult answers a [QueryRequest] with the requested user's public
// key, or an error string if the username is unknown (spec.md §4.7).
type QueryResult struct {
	Username  string `json:"username"`
	PublicKey string `json:"publicKey,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SendRequest is the Content payload of a send [Envelope] (spec.md §4.8
// step 1): a relay request naming the claimed sender and recipient and
// carrying an opaque message body the server never inspects for meaning.
// Because mix return-path tags may rotate between messages, Sender is
// named explicitly here and proved by the accompanying Envelope.Signature
// (computed over this content's raw bytes with the sender's registered
// private key) rather than inferred solely from the transport frame's
// sender tag. SenderPublicKey is optional: the client may choose to
// include it so the recipient doesn't need a separate query, but the
// server never substitutes its own directory copy when the client omits
// it (spec.md §4.8 step 7).
type SendRequest struct {
	Sender          string `json:"sender"`
	Recipient       string `json:"recipient"`
	Body            string `json:"body"`
	SenderPublicKey string `json:"senderPublicKey,omitempty"`
}

// ForwardedMessage is the payload relayed to the recipient's sender tag
// (spec.md §4.8 step 7). SenderPublicKey is carried through only when the
// inbound [SendRequest] included it; the server does not add its own
// directory copy on the sender's behalf. No signature field is added
// here: end-to-end signing of forwarded content is left to the client
// protocol (SPEC_FULL.md §4 item 3).
type ForwardedMessage struct {
	Sender          string `json:"sender"`
	Body            string `json:"body"`
	SenderPublicKey string `json:"senderPublicKey,omitempty"`
}
