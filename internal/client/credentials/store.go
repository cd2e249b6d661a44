// Package credentials persists the session's encoded credential and identity.
//
// The credential is base64("username:password"), the value the backend
// expects after "Basic " in the Authorization header. It is reversible and
// offers no protection at rest; it is kept only because the backend
// authenticates every request with HTTP Basic.
package credentials

import (
	"context"
	"database/sql"
	"encoding/base64"

	"github.com/villaresmetals/console/internal/client/repositories/metadata"
	"github.com/villaresmetals/console/internal/common"
	"github.com/villaresmetals/console/internal/dbx"
)

// Encode returns the transport token for the pair.
func Encode(identifier, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(identifier + ":" + secret))
}

// Store reads and writes the two session keys. It keeps no in-memory copy:
// every Get goes to storage.
type Store struct {
	db   *sql.DB
	repo metadata.Repository
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repo: metadata.NewSQLiteRepository(db)}
}

// Set encodes the pair and persists the token.
func (s *Store) Set(ctx context.Context, identifier, secret string) error {
	return s.repo.Set(ctx, common.CredentialKey, []byte(Encode(identifier, secret)))
}

// Get returns the persisted token; ok is false when none is stored.
func (s *Store) Get(ctx context.Context) (string, bool, error) {
	return s.get(ctx, common.CredentialKey)
}

// Clear removes the token.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, common.CredentialKey)
}

func (s *Store) Identity(ctx context.Context) (string, bool, error) {
	return s.get(ctx, common.IdentityKey)
}

// SaveSession writes the token and the identity in one transaction.
func (s *Store) SaveSession(ctx context.Context, token, username string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.CredentialKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.IdentityKey, []byte(username))
	})
}

// ClearSession removes both keys in one transaction.
func (s *Store) ClearSession(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, common.CredentialKey, common.IdentityKey)
	})
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}
