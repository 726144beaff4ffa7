// Package tasks declares the repository contract for owner-scoped task
// records. Every operation that touches an existing row is keyed by
// (owner, id), so a foreign task and a missing task are the same absence.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskit/internal/server/models"
)

// ListFilter narrows and orders a task listing. SortColumn must already be
// validated against the sortable-column whitelist by the caller; an empty
// value leaves store-native order. Nil Limit/Skip impose no bound.
type ListFilter struct {
	Completed  *bool
	SortColumn string
	SortDesc   bool
	Limit      *int
	Skip       *int
}

// Repository defines persistence operations for tasks.
type Repository interface {
	// Create inserts a new task and returns it with id and timestamps set.
	Create(ctx context.Context, task *models.Task) (*models.Task, error)

	// GetByOwner retrieves the task only if it belongs to ownerID.
	GetByOwner(ctx context.Context, ownerID, id string) (*models.Task, error)

	// ListByOwner returns the owner's tasks narrowed by filter.
	ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Task, error)

	// Update persists description/completed of the task and refreshes its
	// updated_at timestamp, scoped to the owner.
	Update(ctx context.Context, task *models.Task) (*models.Task, error)

	// DeleteByOwner removes the task if it belongs to ownerID and returns
	// the deleted row.
	DeleteByOwner(ctx context.Context, ownerID, id string) (*models.Task, error)

	// DeleteAllForOwner removes every task owned by ownerID.
	DeleteAllForOwner(ctx context.Context, ownerID string) error
}
