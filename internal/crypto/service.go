// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize       = 16
	ivSize         = 12
	tagSize        = 16
	pbkdf2Rounds   = 100_000
	derivedKeySize = 32 // AES-256
)

// service is the private implementation of [Service].
type service struct {
	// rootKey seeds the per-field key derivation: each field gets its own
	// PBKDF2 pass keyed on rootKey and a fresh random salt, so a leaked
	// salt alone reveals nothing about rootKey.
	rootKey []byte

	privateKey *ecdsa.PrivateKey
	publicKey  string // hex-encoded, uncompressed SEC1 point
}

// NewService constructs a [Service] from the operator-supplied password
// (read from SECRET_PATH by the caller, spec.md §6) and the server's own
// ECDSA key pair (loaded or generated by [LoadOrGenerateKeyPair]).
func NewService(password string, privateKey *ecdsa.PrivateKey) (Service, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("crypto: nil signing key")
	}

	// A fixed, non-secret domain-separation salt: PBKDF2 still needs a
	// salt argument, and varying it per process would make previously
	// encrypted fields unrecoverable after a restart. The per-field
	// random salt embedded in each ciphertext blob is what actually
	// defends against precomputation.
	rootKey := pbkdf2.Key([]byte(password), []byte("nym-directory-at-rest-v1"), pbkdf2Rounds, derivedKeySize, sha256.New)

	pub, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: marshal public key: %w", err)
	}

	return &service{
		rootKey:    rootKey,
		privateKey: privateKey,
		publicKey:  hex.EncodeToString(pub),
	}, nil
}

func (s *service) fieldKey(salt []byte) []byte {
	return pbkdf2.Key(s.rootKey, salt, pbkdf2Rounds, derivedKeySize, sha256.New)
}

func (s *service) EncryptField(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("crypto: generate salt: %w", err)
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("crypto: generate iv: %w", err)
	}

	block, err := aes.NewCipher(s.fieldKey(salt))
	if err != nil {
		return "", fmt.Errorf("crypto: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return "", fmt.Errorf("crypto: new gcm: %w", err)
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	blob := make([]byte, 0, saltSize+ivSize+tagSize+len(ct))
	blob = append(blob, salt...)
	blob = append(blob, iv...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

func (s *service) DecryptField(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("crypto: decode blob: %w", err)
	}
	if len(raw) < saltSize+ivSize+tagSize {
		return "", fmt.Errorf("crypto: blob too short")
	}

	salt := raw[:saltSize]
	iv := raw[saltSize : saltSize+ivSize]
	tag := raw[saltSize+ivSize : saltSize+ivSize+tagSize]
	ct := raw[saltSize+ivSize+tagSize:]

	block, err := aes.NewCipher(s.fieldKey(salt))
	if err != nil {
		return "", fmt.Errorf("crypto: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return "", fmt.Errorf("crypto: new gcm: %w", err)
	}

	sealed := append(append([]byte{}, ct...), tag...)
	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("crypto: decrypt field: %w", err)
	}

	return string(plaintext), nil
}

func (s *service) Sign(content []byte) (string, error) {
	digest := sha256.Sum256(content)
	der, err := ecdsa.SignASN1(rand.Reader, s.privateKey, digest[:])
	if err != nil {
		return "", fmt.Errorf("crypto: sign: %w", err)
	}
	return hex.EncodeToString(der), nil
}

func (s *service) Verify(publicKeyHex string, content []byte, sigHex string) bool {
	pub, err := decodePublicKey(publicKeyHex)
	if err != nil {
		return false
	}

	der, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}

	digest := sha256.Sum256(content)
	return ecdsa.VerifyASN1(pub, digest[:], der)
}

func (s *service) PublicKeyHex() string {
	return s.publicKey
}

func (s *service) GenerateNonce() (string, error) {
	nonce := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: generate nonce: %w", err)
	}
	return hex.EncodeToString(nonce), nil
}

// decodePublicKey parses a hex-encoded, PKIX-marshalled ECDSA P-256 public
// key as registered by clients (spec.md §3, §4.5 step 1).
func decodePublicKey(publicKeyHex string) (*ecdsa.PublicKey, error) {
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode public key hex: %w", err)
	}

	pub, err := x509.ParsePKIXPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("crypto: parse public key: %w", err)
	}

	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok || ecdsaPub.Curve != elliptic.P256() {
		return nil, fmt.Errorf("crypto: not a P-256 ECDSA public key")
	}

	return ecdsaPub, nil
}
