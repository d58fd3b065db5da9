package directory

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/nymproject/directory-relay/internal/crypto"
	"github.com/nymproject/directory-relay/internal/logger"
)

func newTestStore(t *testing.T) (*store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	priv, err := crypto.LoadOrGenerateKeyPair(t.TempDir())
	require.NoError(t, err)
	svc, err := crypto.NewService("test-secret", priv)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT username, sender_tag FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "sender_tag"}))

	s := &store{
		db:       &DB{DB: sqlDB, logger: logger.Nop()},
		crypto:   svc,
		log:      logger.Nop(),
		tagIndex: make(map[string]string),
	}
	require.NoError(t, s.warmIndex(context.Background()))

	return s, mock
}

func TestValidateUsername(t *testing.T) {
	require.True(t, ValidateUsername("alice_01"))
	require.True(t, ValidateUsername("Bob-2"))
	require.False(t, ValidateUsername(""))
	require.False(t, ValidateUsername("alice bob"))
	require.False(t, ValidateUsername("alice@bob"))
}

func TestStore_Register_InvalidUsername(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Register(context.Background(), "bad username!", "key")
	require.ErrorIs(t, err, ErrInvalidUsername)
}

func TestStore_Register_DuplicateUsername(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(sqliteUniqueErr())

	err := s.Register(context.Background(), "alice", "pubkey-hex")
	require.ErrorIs(t, err, ErrUsernameTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByUsername_NotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT public_key, sender_tag FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"public_key", "sender_tag"}))

	_, err := s.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetByUsername_DecryptsFields(t *testing.T) {
	s, mock := newTestStore(t)

	encryptedKey, err := s.crypto.EncryptField("pubkey-hex")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT public_key, sender_tag FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"public_key", "sender_tag"}).
			AddRow(encryptedKey, ""))

	user, err := s.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "pubkey-hex", user.PublicKey)
	require.Empty(t, user.SenderTag)
}

func TestStore_GetBySenderTag_UnknownTag(t *testing.T) {
	s, _ := newTestStore(t)

	_, ok, err := s.GetBySenderTag(context.Background(), "unknown-tag")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_UpdateField_RejectsClosedSet(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.UpdateField(context.Background(), "alice", "username", "mallory")
	require.ErrorIs(t, err, ErrNotWritableField)
}

func TestStore_UpdateField_SenderTag_UpdatesIndex(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE users SET sender_tag`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateField(context.Background(), "alice", "senderTag", "tag-123")
	require.NoError(t, err)

	user, ok, err := s.GetBySenderTagNoLookup("tag-123")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", user)
}

// GetBySenderTagNoLookup exposes the in-memory index directly for test
// assertions without requiring a second mocked query.
func (s *store) GetBySenderTagNoLookup(tag string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.tagIndex[tag]
	return username, ok, nil
}
