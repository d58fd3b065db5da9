// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStructuredConfig_AppliesDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("MIX_WEBSOCKET_URL", "ws://127.0.0.1:1977")
	t.Setenv("MIX_NYM_CLIENT_ID", "directory-relay")
	t.Setenv("STORAGE_DATABASE_PATH", "testdata/directory.db")

	cfg, err := GetStructuredConfig()
	require.NoError(t, err)

	assert.Equal(t, "ws://127.0.0.1:1977", cfg.Mix.WebsocketURL)
	assert.Equal(t, "directory-relay", cfg.Mix.ClientID)
	assert.Equal(t, "testdata/directory.db", cfg.Storage.DatabasePath)

	// Untouched fields fall back to withDefaults().
	assert.Equal(t, "127.0.0.1", cfg.Mix.ClientHost)
	assert.Equal(t, "nym_address.txt", cfg.Mix.AddressFile)
	assert.Equal(t, 500*time.Millisecond, cfg.Mix.ReconnectBackoffMin)
	assert.Equal(t, 30*time.Second, cfg.Mix.ReconnectBackoffMax)
	assert.Equal(t, "keys", cfg.Crypto.KeysDir)
	assert.Equal(t, "secret.txt", cfg.Crypto.SecretPath)
	assert.Equal(t, 60*time.Second, cfg.Crypto.NonceTTL)
	assert.Equal(t, time.Minute, cfg.Presence.HeartbeatInterval)
	assert.Empty(t, cfg.Presence.RedisURL)
	assert.Empty(t, cfg.Admin.Address)
}

func TestGetStructuredConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("MIX_WEBSOCKET_URL", "ws://127.0.0.1:1977")
	t.Setenv("MIX_NYM_CLIENT_ID", "directory-relay")
	t.Setenv("STORAGE_DATABASE_PATH", "testdata/directory.db")
	t.Setenv("CRYPTO_NONCE_TTL", "90s")
	t.Setenv("ADMIN_ADDRESS", ":9090")

	cfg, err := GetStructuredConfig()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Crypto.NonceTTL)
	assert.Equal(t, ":9090", cfg.Admin.Address)
}

func TestGetStructuredConfig_MissingWebsocketURL(t *testing.T) {
	t.Setenv("STORAGE_DATABASE_PATH", "testdata/directory.db")

	_, err := GetStructuredConfig()
	require.ErrorIs(t, err, ErrInvalidMixConfigs)
}

func TestStructuredConfig_Validate(t *testing.T) {
	base := func() *StructuredConfig {
		return &StructuredConfig{
			Mix:     MixConfig{WebsocketURL: "ws://localhost:1977"},
			Storage: StorageConfig{DatabasePath: "storage/directory.db"},
			Crypto:  CryptoConfig{KeysDir: "keys", SecretPath: "secret.txt"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, base().validate())
	})

	t.Run("missing websocket url", func(t *testing.T) {
		cfg := base()
		cfg.Mix.WebsocketURL = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidMixConfigs)
	})

	t.Run("missing database path", func(t *testing.T) {
		cfg := base()
		cfg.Storage.DatabasePath = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidStorageConfigs)
	})

	t.Run("missing keys dir", func(t *testing.T) {
		cfg := base()
		cfg.Crypto.KeysDir = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidCryptoConfigs)
	})

	t.Run("missing secret path", func(t *testing.T) {
		cfg := base()
		cfg.Crypto.SecretPath = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidCryptoConfigs)
	})
}
