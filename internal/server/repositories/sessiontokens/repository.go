// Package sessiontokens declares the repository contract for the
// active-token list kept per account. A token row existing is what makes a
// signed token valid; revocation is row deletion.
package sessiontokens

import "context"

// Repository defines operations on an account's active session tokens.
type Repository interface {
	// Add appends a token to the account's active list.
	Add(ctx context.Context, userID string, token string) error

	// Exists reports whether the exact token string is active for userID.
	Exists(ctx context.Context, userID string, token string) (bool, error)

	// Delete removes exactly the matching token (single-session logout).
	// Deleting a non-existent token is not an error.
	Delete(ctx context.Context, userID string, token string) error

	// DeleteAllForUser empties the account's active list (logout everywhere).
	DeleteAllForUser(ctx context.Context, userID string) error
}
