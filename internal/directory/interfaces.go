package directory

import (
	"context"

	"github.com/nymproject/directory-relay/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/directory_store_mock.go -package=mock

// Store is the Directory Store (spec.md §4.2): the single source of truth
// for registered usernames, their public keys, and their most recently
// observed mix sender tag. The public key and sender tag are encrypted at
// rest (spec.md §4.1) and decrypted transparently by the implementation
// before being returned; the username is stored in the clear as the key.
type Store interface {
	// Register inserts a new user with the given public key.
	// Returns [ErrUsernameTaken] if the username already exists, or
	// [ErrInvalidUsername] if it fails the format check.
	Register(ctx context.Context, username, publicKey string) error

	// GetByUsername returns the directory row for username, or
	// [ErrUserNotFound] if no such user is registered.
	GetByUsername(ctx context.Context, username string) (*models.DirectoryUser, error)

	// GetBySenderTag returns the directory row whose most recently stored
	// sender tag matches tag, and ok=true. Returns ok=false (never an
	// error) if no user currently owns that tag (spec.md §4.3/§4.4: an
	// unauthenticated frame from an unrecognized tag).
	GetBySenderTag(ctx context.Context, tag string) (user *models.DirectoryUser, ok bool, err error)

	// UpdateField writes value to field for username. field must be one
	// of [models.FieldPublicKey] or [models.FieldSenderTag]; any other
	// value returns [ErrNotWritableField] without touching storage
	// (spec.md §4.2, §9).
	UpdateField(ctx context.Context, username, field, value string) error

	// Count returns the total number of registered users, for the
	// operator stats surface (SPEC_FULL.md §2.6). It never discloses
	// usernames.
	Count(ctx context.Context) (int, error)
}
