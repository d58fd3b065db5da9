// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sync"

	sq "github.com/Masterminds/squirrel"

	"github.com/nymproject/directory-relay/internal/crypto"
	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/models"
)

// usernamePattern is the closed character set for valid usernames
// (spec.md §9, ported from the original implementation's `[A-Za-z0-9_-]+`).
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateUsername reports whether username is well-formed. Callers
// (the Message Router as well as [store.Register]) should check this
// before trusting a username from an untrusted frame.
func ValidateUsername(username string) bool {
	return username != "" && usernamePattern.MatchString(username)
}

// store is the sqlite-backed implementation of [Store].
//
// tagIndex mirrors username↔senderTag in memory so [store.GetBySenderTag]
// never needs to decrypt and scan the whole table (spec.md §9,
// recommended Option (b)). It is
// rebuilt once at startup and kept in sync by [store.Register] and
// [store.UpdateField].
type store struct {
	db     *DB
	crypto crypto.Service
	log    *logger.Logger

	mu       sync.RWMutex
	tagIndex map[string]string // senderTag -> username
}

// NewStore constructs a [Store] over db, decrypting/encrypting fields via
// svc, and warms the sender-tag index from the existing rows.
func NewStore(ctx context.Context, db *DB, svc crypto.Service, log *logger.Logger) (Store, error) {
	s := &store{
		db:       db,
		crypto:   svc,
		log:      log,
		tagIndex: make(map[string]string),
	}

	if err := s.warmIndex(ctx); err != nil {
		return nil, fmt.Errorf("directory: warm tag index: %w", err)
	}

	return s, nil
}

func (s *store) warmIndex(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT username, sender_tag FROM users`)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	for rows.Next() {
		var username, encryptedTag string
		if err := rows.Scan(&username, &encryptedTag); err != nil {
			return err
		}
		if encryptedTag == "" {
			continue
		}
		tag, err := s.crypto.DecryptField(encryptedTag)
		if err != nil {
			s.log.Warn().Str("username", username).Err(err).Msg("skipping undecryptable sender tag while warming index")
			continue
		}
		s.tagIndex[tag] = username
	}

	return rows.Err()
}

func (s *store) Register(ctx context.Context, username, publicKey string) error {
	if !ValidateUsername(username) {
		return ErrInvalidUsername
	}

	encryptedKey, err := s.crypto.EncryptField(publicKey)
	if err != nil {
		return fmt.Errorf("directory: encrypt public key: %w", err)
	}

	query, args, err := sq.Insert("users").
		Columns("username", "public_key", "sender_tag").
		Values(username, encryptedKey, "").
		ToSql()
	if err != nil {
		return fmt.Errorf("directory: build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("directory: insert user: %w", err)
	}

	return nil
}

func (s *store) GetByUsername(ctx context.Context, username string) (*models.DirectoryUser, error) {
	query, args, err := sq.Select("public_key", "sender_tag").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("directory: build select: %w", err)
	}

	var encryptedKey, encryptedTag string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&encryptedKey, &encryptedTag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("directory: select user: %w", err)
	}

	return s.decryptRow(username, encryptedKey, encryptedTag)
}

func (s *store) GetBySenderTag(ctx context.Context, tag string) (*models.DirectoryUser, bool, error) {
	s.mu.RLock()
	username, ok := s.tagIndex[tag]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	user, err := s.GetByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		// Index went stale (e.g. concurrent deletion never modeled by this
		// spec); treat as "tag unknown" rather than surfacing an error.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return user, true, nil
}

func (s *store) UpdateField(ctx context.Context, username, field, value string) error {
	var column string
	switch field {
	case models.FieldPublicKey:
		column = "public_key"
	case models.FieldSenderTag:
		column = "sender_tag"
	default:
		return ErrNotWritableField
	}

	encryptedValue, err := s.crypto.EncryptField(value)
	if err != nil {
		return fmt.Errorf("directory: encrypt %s: %w", field, err)
	}

	query, args, err := sq.Update("users").
		Set(column, encryptedValue).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return fmt.Errorf("directory: build update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("directory: update %s: %w", field, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("directory: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	if field == models.FieldSenderTag {
		s.mu.Lock()
		for tag, u := range s.tagIndex {
			if u == username {
				delete(s.tagIndex, tag)
			}
		}
		s.tagIndex[value] = username
		s.mu.Unlock()
	}

	return nil
}

func (s *store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("directory: count users: %w", err)
	}
	return count, nil
}

func (s *store) decryptRow(username, encryptedKey, encryptedTag string) (*models.DirectoryUser, error) {
	publicKey, err := s.crypto.DecryptField(encryptedKey)
	if err != nil {
		return nil, fmt.Errorf("directory: decrypt public key: %w", err)
	}

	var senderTag string
	if encryptedTag != "" {
		senderTag, err = s.crypto.DecryptField(encryptedTag)
		if err != nil {
			return nil, fmt.Errorf("directory: decrypt sender tag: %w", err)
		}
	}

	return &models.DirectoryUser{
		Username:  username,
		PublicKey: publicKey,
		SenderTag: senderTag,
	}, nil
}

// isUniqueViolation reports whether err came from violating a users
// table constraint, which on insert means a duplicate username. It
// matches the typed mattn/go-sqlite3 error by its SQLITE_CONSTRAINT
// result code (see [sqliteConstraintError]), not by the error string.
func isUniqueViolation(err error) bool {
	return err != nil && sqliteConstraintError(err)
}
