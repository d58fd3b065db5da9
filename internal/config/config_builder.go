package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

// configBuilder accumulates partial [StructuredConfig] values from different
// sources and merges them into a single configuration on [build].
//
// The builder follows the fluent-interface pattern: each with* method appends
// a config source and returns the same *configBuilder so calls can be chained.
// Any error encountered during a with* step is stored in err and causes
// [build] to fail-fast without attempting to merge.
type configBuilder struct {
	// configs holds the ordered list of partial configurations to be merged.
	// Sources appended earlier take precedence; later ones only fill fields
	// still at their zero value (mergo.Merge semantics).
	configs []*StructuredConfig

	// err accumulates errors from individual source-loading steps.
	// Multiple errors are joined via errors.Join so all failures are visible
	// at once when build() is called.
	err error
}

// newConfigBuilder creates and returns an empty *configBuilder ready for use.
// The internal slice is pre-allocated for two sources (defaults, env) to
// avoid reallocations in the common case.
func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 2),
	}
}

// build merges all accumulated partial configurations into a single
// [StructuredConfig] and validates the result.
//
// Merge order follows the order in which sources were appended: the first
// source takes priority, and each subsequent source only fills in fields
// still at their zero value (mergo.Merge default behaviour) — later
// sources are fallbacks, not overrides.
//
// Returns an error if:
//   - any with* step previously recorded an error (b.err != nil);
//   - mergo.Merge fails for any source;
//   - the final config fails [StructuredConfig.validate].
func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

// withEnv parses environment variables into a [StructuredConfig] via
// [parseEnv] and appends the result to the builder.
//
// If parsing fails, the error is joined into b.err and the builder is
// returned unchanged so that subsequent steps are skipped gracefully.
//
// Returns the same *configBuilder to support method chaining.
func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

// withDefaults appends a baseline [StructuredConfig] carrying the same
// operator-friendly fallbacks also expressed as `envDefault` struct tags,
// so the defaults remain visible as an explicit merge source rather than
// only implicit behavior of the env parser.
//
// Returns the same *configBuilder to support method chaining.
func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, &StructuredConfig{
		Mix: MixConfig{
			ClientHost:          "127.0.0.1",
			ClientPort:          1977,
			AddressFile:         "nym_address.txt",
			ReconnectBackoffMin: 500 * time.Millisecond,
			ReconnectBackoffMax: 30 * time.Second,
		},
		Storage: StorageConfig{
			DatabasePath: "storage/directory.db",
		},
		Crypto: CryptoConfig{
			KeysDir:    "keys",
			SecretPath: "secret.txt",
			NonceTTL:   60 * time.Second,
		},
		Presence: PresenceConfig{
			HeartbeatInterval: time.Minute,
		},
	})
	return b
}
