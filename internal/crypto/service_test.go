package crypto

import (
	"crypto/elliptic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	priv, err := LoadOrGenerateKeyPair(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, elliptic.P256(), priv.Curve)

	svc, err := NewService("correct horse battery staple", priv)
	require.NoError(t, err)
	return svc
}

func TestService_EncryptDecryptField_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	blob, err := svc.EncryptField("sender-tag-abc123")
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	plaintext, err := svc.DecryptField(blob)
	require.NoError(t, err)
	require.Equal(t, "sender-tag-abc123", plaintext)
}

func TestService_EncryptField_DistinctCiphertextsPerCall(t *testing.T) {
	svc := newTestService(t)

	a, err := svc.EncryptField("same-plaintext")
	require.NoError(t, err)
	b, err := svc.EncryptField("same-plaintext")
	require.NoError(t, err)

	require.NotEqual(t, a, b, "fresh salt/iv must make each encryption unique")
}

func TestService_DecryptField_RejectsTamperedBlob(t *testing.T) {
	svc := newTestService(t)

	blob, err := svc.EncryptField("nonce-target")
	require.NoError(t, err)

	tampered := []byte(blob)
	tampered[len(tampered)-1] ^= 0xFF

	_, err = svc.DecryptField(string(tampered))
	require.Error(t, err)
}

func TestService_SignVerify_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	content := []byte(`{"username":"alice"}`)

	sig, err := svc.Sign(content)
	require.NoError(t, err)
	require.True(t, svc.Verify(svc.PublicKeyHex(), content, sig))
}

func TestService_Verify_RejectsWrongContent(t *testing.T) {
	svc := newTestService(t)

	sig, err := svc.Sign([]byte("original"))
	require.NoError(t, err)

	require.False(t, svc.Verify(svc.PublicKeyHex(), []byte("tampered"), sig))
}

func TestService_Verify_RejectsMalformedSignature(t *testing.T) {
	svc := newTestService(t)
	require.False(t, svc.Verify(svc.PublicKeyHex(), []byte("x"), "not-hex!!"))
}

func TestService_GenerateNonce_Unique16Bytes(t *testing.T) {
	svc := newTestService(t)

	a, err := svc.GenerateNonce()
	require.NoError(t, err)
	b, err := svc.GenerateNonce()
	require.NoError(t, err)

	require.Len(t, a, 32) // 16 bytes hex-encoded
	require.NotEqual(t, a, b)
}
