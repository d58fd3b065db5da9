// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto implements the Crypto Service: at-rest field encryption,
// server-key signing/verification, and challenge nonce generation used by
// the directory and relay server.
//
// # At-rest field encryption
//
// publicKey and senderTag are never stored in plaintext. A root key is
// derived once at startup from an operator-supplied password via
// PBKDF2-HMAC-SHA256 (100,000 iterations); each encrypted field then gets
// its own AES-256 key, derived from the root key and a fresh random salt
// by a second PBKDF2-HMAC-SHA256 pass.
// [Service.EncryptField] and [Service.DecryptField] operate on individual
// string fields, producing a self-contained Base64 blob:
// salt(16) ‖ iv(12) ‖ tag(16) ‖ ciphertext.
//
// # Authentication
//
// The server holds one ECDSA P-256 (SECP256R1) key pair, loaded from or
// generated into the configured keys directory. [Service.Sign] and
// [Service.Verify] operate on raw content bytes, producing and checking a
// DER-encoded (r,s) signature, hex-encoded.
package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_service_mock.go -package=mock

// Service is responsible for all server-side cryptography: deriving the
// at-rest encryption key, encrypting/decrypting directory fields, signing
// outgoing content, verifying client signatures, and minting challenge
// nonces. It has no knowledge of the network, directory storage, or
// session state.
type Service interface {
	// EncryptField encrypts plaintext with the service's derived at-rest
	// key using AES-256-GCM and a fresh random salt and IV. The returned
	// string is the Base64 (standard) encoding of
	// salt(16) ‖ iv(12) ‖ tag(16) ‖ ciphertext.
	EncryptField(plaintext string) (string, error)

	// DecryptField reverses [Service.EncryptField]. Returns an error if the
	// blob is malformed, too short, or the authentication tag does not
	// verify (meaning the encryption key or the ciphertext is wrong).
	DecryptField(blob string) (string, error)

	// Sign computes the server's ECDSA P-256 signature over content and
	// returns it as a hex-encoded, DER-encoded (r,s) pair (spec.md §4.1).
	Sign(content []byte) (string, error)

	// Verify checks that sigHex is a valid DER-encoded, hex-encoded ECDSA
	// signature over content under the given hex-encoded public key.
	// Returns false (never an error) when the signature does not verify,
	// so that callers can treat "invalid" and "malformed" identically.
	Verify(publicKeyHex string, content []byte, sigHex string) bool

	// PublicKeyHex returns the server's own public key as hex-encoded
	// PKIX DER.
	PublicKeyHex() string

	// GenerateNonce returns a fresh cryptographically random 16-byte
	// challenge, hex-encoded (spec.md §4.5 step 2, §4.6 step 2).
	GenerateNonce() (string, error)
}
