// Package repomanager defines the seam that vends repositories bound to a
// particular database handle, so services can run the same repository code
// over a plain connection or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskit/internal/dbx"
	"github.com/dmitrijs2005/taskit/internal/server/repositories/sessiontokens"
	"github.com/dmitrijs2005/taskit/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskit/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to the provided DBTX and owns
// schema migrations.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	SessionTokens(db dbx.DBTX) sessiontokens.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
