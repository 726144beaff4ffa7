// This file implements TaskService, the ownership-scoped task store.
// Every operation is keyed by the calling account; a task owned by someone
// else is indistinguishable from one that does not exist.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/taskit/internal/common"
	"github.com/dmitrijs2005/taskit/internal/server/models"
	"github.com/dmitrijs2005/taskit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskit/internal/server/repositories/tasks"
)

// sortColumns maps the externally visible sort field names onto table
// columns. Only these fields may be sorted on.
var sortColumns = map[string]string{
	"description": "description",
	"completed":   "completed",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// ListOptions narrows and orders a task listing from the caller's point of
// view. SortField uses the JSON field names; nil Limit/Skip impose no bound.
type ListOptions struct {
	Completed *bool
	SortField string
	SortDesc  bool
	Limit     *int
	Skip      *int
}

// TaskUpdate is the explicit allow-list of mutable task fields. Nil means
// "leave unchanged"; an update with every field nil is invalid.
type TaskUpdate struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// IsEmpty reports whether no field is set.
func (u TaskUpdate) IsEmpty() bool {
	return u.Description == nil && u.Completed == nil
}

// TaskService provides owner-scoped task operations.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTaskService constructs a TaskService.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", common.FieldError("description", "description is required")
	}
	return description, nil
}

// Create stores a new task for ownerID. New tasks always start incomplete.
func (s *TaskService) Create(ctx context.Context, ownerID, description string) (*models.Task, error) {
	description, err := validateDescription(description)
	if err != nil {
		return nil, err
	}

	task := &models.Task{OwnerID: ownerID, Description: description, Completed: false}
	task, err = s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return task, nil
}

// Get returns the task only if ownerID owns it.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.repomanager.Tasks(s.db).GetByOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return task, nil
}

// List returns the owner's tasks narrowed by opts. An unknown sort field
// is rejected before the store is queried.
func (s *TaskService) List(ctx context.Context, ownerID string, opts ListOptions) ([]*models.Task, error) {
	filter := tasks.ListFilter{
		Completed: opts.Completed,
		SortDesc:  opts.SortDesc,
		Limit:     opts.Limit,
		Skip:      opts.Skip,
	}

	if opts.SortField != "" {
		column, ok := sortColumns[opts.SortField]
		if !ok {
			return nil, common.FieldError("sortBy", "cannot sort by this field")
		}
		filter.SortColumn = column
	}

	list, err := s.repomanager.Tasks(s.db).ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return list, nil
}

// Update applies an allow-listed field update to the owner's task. The
// record is loaded, mutated, re-validated, and saved; nothing is applied
// when the update set is empty or the task is not the owner's.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, upd TaskUpdate) (*models.Task, error) {
	if upd.IsEmpty() {
		return nil, common.FieldError("updates", "invalid updates being applied")
	}

	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if upd.Description != nil {
		description, err := validateDescription(*upd.Description)
		if err != nil {
			return nil, err
		}
		task.Description = description
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}

	task, err = s.repomanager.Tasks(s.db).Update(ctx, task)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return task, nil
}

// Delete removes the owner's task and returns the deleted record.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.repomanager.Tasks(s.db).DeleteByOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return task, nil
}
