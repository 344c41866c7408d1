package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// TokenRepository handles access token rows
type TokenRepository struct {
	db *DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Get retrieves an unexpired token entry. Expired rows are deleted and
// reported as ErrNotFound.
func (r *TokenRepository) Get(ctx context.Context, namespace, key string) (*TokenEntry, error) {
	query := `
		SELECT namespace, key, value, created_at, updated_at, version, ttl
		FROM access_tokens
		WHERE namespace = $1 AND key = $2
	`

	var entry TokenEntry
	err := r.db.QueryRow(ctx, query, namespace, key).Scan(
		&entry.Namespace,
		&entry.Key,
		&entry.Value,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.Version,
		&entry.TTL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if entry.IsExpired(time.Now()) {
		_ = r.Delete(ctx, namespace, key)
		return nil, ErrNotFound
	}

	return &entry, nil
}

// Upsert creates or replaces a token and returns the row version
func (r *TokenRepository) Upsert(ctx context.Context, namespace, key, value string, ttl *int) (int, error) {
	query := `
		INSERT INTO access_tokens (namespace, key, value, ttl, version)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = EXCLUDED.value,
			ttl = EXCLUDED.ttl,
			updated_at = CURRENT_TIMESTAMP,
			version = access_tokens.version + 1
		RETURNING version
	`

	var version int
	if err := r.db.QueryRow(ctx, query, namespace, key, value, ttl).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to set token: %w", err)
	}
	return version, nil
}

// Delete removes a token. A missing row is not an error.
func (r *TokenRepository) Delete(ctx context.Context, namespace, key string) error {
	query := `DELETE FROM access_tokens WHERE namespace = $1 AND key = $2`

	if _, err := r.db.Exec(ctx, query, namespace, key); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Exists checks if an unexpired token exists
func (r *TokenRepository) Exists(ctx context.Context, namespace, key string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM access_tokens
			WHERE namespace = $1 AND key = $2
			AND (ttl IS NULL OR updated_at + interval '1 second' * ttl > CURRENT_TIMESTAMP)
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, namespace, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check token existence: %w", err)
	}
	return exists, nil
}

// List returns the unexpired entries of a namespace ordered by key
func (r *TokenRepository) List(ctx context.Context, namespace string) ([]*TokenEntry, error) {
	query := `
		SELECT namespace, key, value, created_at, updated_at, version, ttl
		FROM access_tokens
		WHERE namespace = $1
		AND (ttl IS NULL OR updated_at + interval '1 second' * ttl > CURRENT_TIMESTAMP)
		ORDER BY key
	`

	rows, err := r.db.Query(ctx, query, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var entries []*TokenEntry
	for rows.Next() {
		var entry TokenEntry
		if err := rows.Scan(
			&entry.Namespace,
			&entry.Key,
			&entry.Value,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.Version,
			&entry.TTL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}
	return entries, nil
}

// DeleteExpired removes expired tokens in every namespace
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM access_tokens
		WHERE ttl IS NOT NULL AND ttl > 0
		AND updated_at + interval '1 second' * ttl <= CURRENT_TIMESTAMP
	`

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected(), nil
}
