package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taxvault/internal/dbx"
	"github.com/dmitrijs2005/taxvault/internal/server/repositories/ledger"
)

// RepositoryManager hands out repositories bound to a connection or a
// transaction, and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Ledger(db dbx.DBTX) ledger.Repository
}
