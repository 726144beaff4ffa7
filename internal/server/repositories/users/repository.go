// Package users declares the repository contract for account records.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskit/internal/server/models"
)

// Repository defines persistence operations for accounts. Implementations
// return common.ErrorNotFound when a lookup matches nothing.
type Repository interface {
	// Create inserts a new account and returns it with id and timestamps set.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID retrieves an account by id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail retrieves an account by its (lower-cased) email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update persists all mutable columns of the account and refreshes
	// its updated_at timestamp.
	Update(ctx context.Context, user *models.User) (*models.User, error)

	// Delete removes an account row.
	Delete(ctx context.Context, id string) error
}
