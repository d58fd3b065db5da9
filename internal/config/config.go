// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// StructuredConfig is the fully-merged runtime configuration for the
// directory and relay server, assembled by [GetStructuredConfig].
type StructuredConfig struct {
	Mix      MixConfig      `envPrefix:"MIX_"`
	Storage  StorageConfig  `envPrefix:"STORAGE_"`
	Crypto   CryptoConfig   `envPrefix:"CRYPTO_"`
	Presence PresenceConfig `envPrefix:"PRESENCE_"`
	Admin    AdminConfig    `envPrefix:"ADMIN_"`
}

// MixConfig describes how to reach and supervise the mix-client sidecar
// that provides the sender-anonymized transport (spec.md §4.9, §6).
type MixConfig struct {
	// WebsocketURL is the duplex endpoint exposed by the running mix
	// client (e.g. "ws://127.0.0.1:1977").
	WebsocketURL string `env:"WEBSOCKET_URL"`
	// ClientHost/ClientPort/ClientID select and address the mix-client
	// subprocess the Control Supervisor launches and monitors.
	ClientHost string `env:"NYM_CLIENT_HOST" envDefault:"127.0.0.1"`
	ClientPort int    `env:"NYM_CLIENT_PORT" envDefault:"1977"`
	ClientID   string `env:"NYM_CLIENT_ID"`
	// AddressFile is where the mix client's self-address is persisted
	// once learned (spec.md §4.9, §6 "nym_address.txt").
	AddressFile string `env:"NYM_ADDRESS_FILE" envDefault:"nym_address.txt"`
	// ReconnectBackoffMin/Max bound the Transport Adapter's reconnect
	// backoff (spec.md §5).
	ReconnectBackoffMin time.Duration `env:"RECONNECT_BACKOFF_MIN" envDefault:"500ms"`
	ReconnectBackoffMax time.Duration `env:"RECONNECT_BACKOFF_MAX" envDefault:"30s"`
}

// StorageConfig describes the Directory Store's backing sqlite file.
type StorageConfig struct {
	// DatabasePath is the filesystem path to the sqlite database holding
	// the users table (spec.md §3, §6 "DATABASE_PATH").
	DatabasePath string `env:"DATABASE_PATH" envDefault:"storage/directory.db"`
}

// CryptoConfig describes key material locations and the nonce lifetime
// used by the Crypto Service and Session Ledger.
type CryptoConfig struct {
	// KeysDir holds the server's own ECDSA signing key pair (spec.md §6
	// "KEYS_DIR").
	KeysDir string `env:"KEYS_DIR" envDefault:"keys"`
	// SecretPath names a file containing the operator-supplied password
	// from which the at-rest AES-256-GCM key is derived via PBKDF2
	// (spec.md §4.1, §6 "SECRET_PATH").
	SecretPath string `env:"SECRET_PATH" envDefault:"secret.txt"`
	// NonceTTL bounds how long an issued registration/login challenge
	// remains valid (SPEC_FULL.md §3).
	NonceTTL time.Duration `env:"NONCE_TTL" envDefault:"60s"`
}

// PresenceConfig describes the optional Redis-backed presence and
// notification bus (spec.md §2, §6; SPEC_FULL.md §2.5).
type PresenceConfig struct {
	// RedisURL is empty when the presence bus is disabled.
	RedisURL string `env:"REDIS_URL"`
	// HeartbeatInterval controls how often the online-user count is
	// logged when the presence bus is active (SPEC_FULL.md §3).
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"1m"`
}

// AdminConfig describes the optional read-only operator HTTP surface
// (SPEC_FULL.md §2.6). Address is empty by default, which disables it.
type AdminConfig struct {
	Address string `env:"ADDRESS"`
}

// GetStructuredConfig builds the runtime configuration by reading
// environment variables first, then falling back to built-in defaults
// for anything left unset, and validating the result.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withDefaults().
		build()
}

func (c *StructuredConfig) validate() error {
	if c.Mix.WebsocketURL == "" {
		return ErrInvalidMixConfigs
	}
	if c.Storage.DatabasePath == "" {
		return ErrInvalidStorageConfigs
	}
	if c.Crypto.KeysDir == "" || c.Crypto.SecretPath == "" {
		return ErrInvalidCryptoConfigs
	}
	return nil
}
