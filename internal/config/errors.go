package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidMixConfigs indicates invalid mix-client transport settings
	// (a missing websocket URL).
	ErrInvalidMixConfigs = errors.New("invalid mix client configuration")
	// ErrInvalidStorageConfigs indicates invalid directory storage settings
	// (for example, empty database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidCryptoConfigs indicates invalid crypto configuration
	// (for example, missing keys directory or secret path).
	ErrInvalidCryptoConfigs = errors.New("invalid crypto configuration")
)
