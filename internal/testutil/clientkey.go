// Package testutil provides small test-only helpers shared across this
// module's package tests; it is never imported by production code.
package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// ClientKey simulates a registered client's ECDSA P-256 key pair in
// tests, standing in for the private key a real client would hold and
// never transmit.
type ClientKey struct {
	priv *ecdsa.PrivateKey
	pub  string
}

// NewClientKey generates a fresh P-256 key pair for use in a test.
func NewClientKey(t *testing.T) *ClientKey {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	return &ClientKey{priv: priv, pub: hex.EncodeToString(der)}
}

// PublicKeyHex returns the hex-encoded PKIX public key, in the same
// format the Crypto Service expects (spec.md §3).
func (k *ClientKey) PublicKeyHex() string { return k.pub }

// Sign produces a hex-encoded, DER-encoded ECDSA signature over content,
// matching [crypto.Service.Sign]'s wire format.
func (k *ClientKey) Sign(content []byte) (string, error) {
	digest := sha256.Sum256(content)
	der, err := ecdsa.SignASN1(rand.Reader, k.priv, digest[:])
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(der), nil
}
