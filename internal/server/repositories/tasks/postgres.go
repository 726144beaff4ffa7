package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/taskit/internal/common"
	"github.com/dmitrijs2005/taskit/internal/dbx"
	"github.com/dmitrijs2005/taskit/internal/server/models"
)

// PostgresRepository implements task persistence over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, owner_id, description, completed, created_at, updated_at`

func scanTask(row *sql.Row) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(&task.ID, &task.OwnerID, &task.Description,
		&task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// Create inserts the task with a fresh id and returns it with
// database-assigned timestamps.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {

	query :=
		`INSERT INTO tasks (id, owner_id, description, completed)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at
		 `

	task.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Description, task.Completed).
		Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerID, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`
	return scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
}

// ListByOwner builds the listing query from the filter. SortColumn is
// interpolated and therefore must come from the caller's whitelist, never
// from raw request input.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Task, error) {

	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`)
	args := []any{ownerID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}

	if filter.SortColumn != "" {
		direction := "ASC"
		if filter.SortDesc {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", filter.SortColumn, direction)
	}

	if filter.Limit != nil {
		args = append(args, *filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	if filter.Skip != nil {
		args = append(args, *filter.Skip)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(&task.ID, &task.OwnerID, &task.Description,
			&task.Completed, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update writes description/completed back, scoped to the owner, and bumps
// updated_at.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {

	query :=
		`UPDATE tasks
		 SET description = $3, completed = $4, updated_at = now()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Description, task.Completed).
		Scan(&task.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return task, nil
}

// DeleteByOwner removes the task, scoped to the owner, and returns the
// deleted row.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID, id string) (*models.Task, error) {
	query :=
		`DELETE FROM tasks
		 WHERE id = $1 AND owner_id = $2
		 RETURNING ` + taskColumns
	return scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	query := `DELETE FROM tasks WHERE owner_id = $1`
	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
