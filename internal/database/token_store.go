// Package database stores DandB API access tokens in PostgreSQL.
package database

import (
	"context"
	"errors"
	"time"

	"github.com/birbparty/dandb-go/sdk"
)

// TokenStore is a PostgreSQL backed sdk.TokenCache
type TokenStore struct {
	db        *DB
	repo      *TokenRepository
	namespace string
}

var _ sdk.TokenCache = (*TokenStore)(nil)

// NewTokenStore connects to PostgreSQL, applies the schema and returns a store
func NewTokenStore(ctx context.Context, cfg *Config) (*TokenStore, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return NewTokenStoreWithDB(db, cfg.Namespace), nil
}

// NewTokenStoreWithDB wraps an open, migrated database
func NewTokenStoreWithDB(db *DB, namespace string) *TokenStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &TokenStore{
		db:        db,
		repo:      NewTokenRepository(db),
		namespace: namespace,
	}
}

// Namespace returns the namespace tokens are stored under
func (s *TokenStore) Namespace() string {
	return s.namespace
}

// Has reports whether an unexpired token is stored under key
func (s *TokenStore) Has(ctx context.Context, key string) (bool, error) {
	return s.repo.Exists(ctx, s.namespace, key)
}

// Get returns the token stored under key, or "" if it is absent or expired
func (s *TokenStore) Get(ctx context.Context, key string) (string, error) {
	entry, err := s.repo.Get(ctx, s.namespace, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return entry.Value, nil
}

// Put stores value under key for ttl. A ttl of zero or less never expires.
func (s *TokenStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.repo.Upsert(ctx, s.namespace, key, value, ttlSeconds(ttl))
	return err
}

// Delete removes key
func (s *TokenStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, s.namespace, key)
}

// Entries lists the unexpired tokens of the namespace
func (s *TokenStore) Entries(ctx context.Context) ([]*TokenEntry, error) {
	return s.repo.List(ctx, s.namespace)
}

// Purge deletes expired tokens and returns how many were removed
func (s *TokenStore) Purge(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}

// Ping checks the database connection
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.db.Health(ctx)
}

// Close closes the connection pool
func (s *TokenStore) Close() error {
	s.db.Close()
	return nil
}
