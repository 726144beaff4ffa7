package models

import "time"

// Task is a to-do item owned by exactly one user. OwnerID is a plain
// reference: it is required at creation but carries no foreign-key
// constraint, so integrity is maintained by the account delete cascade.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
