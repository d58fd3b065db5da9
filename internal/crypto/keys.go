// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

const serverKeyFileName = "server_ecdsa_p256.pem"

// LoadOrGenerateKeyPair loads the server's ECDSA P-256 signing key from
// <keysDir>/server_ecdsa_p256.pem, generating and persisting a new one if
// it does not yet exist. keysDir is created (mode 0700) if missing.
func LoadOrGenerateKeyPair(keysDir string) (*ecdsa.PrivateKey, error) {
	if err := os.MkdirAll(keysDir, 0o700); err != nil {
		return nil, fmt.Errorf("crypto: create keys dir: %w", err)
	}

	path := filepath.Join(keysDir, serverKeyFileName)

	raw, err := os.ReadFile(path)
	if err == nil {
		return decodePrivateKeyPEM(raw)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("crypto: read key file: %w", err)
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate key pair: %w", err)
	}

	if err := persistPrivateKeyPEM(path, priv); err != nil {
		return nil, err
	}

	return priv, nil
}

func decodePrivateKeyPEM(raw []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("crypto: invalid PEM key file")
	}

	priv, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("crypto: parse EC private key: %w", err)
	}
	return priv, nil
}

func persistPrivateKeyPEM(path string, priv *ecdsa.PrivateKey) error {
	der, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return fmt.Errorf("crypto: marshal EC private key: %w", err)
	}

	block := &pem.Block{Type: "EC PRIVATE KEY", Bytes: der}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("crypto: write key file: %w", err)
	}

	return nil
}
