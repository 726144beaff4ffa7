// Package sessiontokens provides a PostgreSQL-backed repository for the
// per-account active session token list.
package sessiontokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskit/internal/dbx"
)

// PostgresRepository implements the active-token list over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts a new active token row for userID. Concurrent logins insert
// independent rows, so multi-device issuance never clobbers a sibling.
func (r *PostgresRepository) Add(ctx context.Context, userID string, token string) error {
	query := `
		INSERT INTO session_tokens (user_id, token)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Exists reports whether the exact token string is active for userID.
func (r *PostgresRepository) Exists(ctx context.Context, userID string, token string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM session_tokens WHERE user_id = $1 AND token = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Delete removes exactly the matching token row.
func (r *PostgresRepository) Delete(ctx context.Context, userID string, token string) error {
	query := `
		DELETE FROM session_tokens
		WHERE user_id = $1 AND token = $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every active token for userID.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM session_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
