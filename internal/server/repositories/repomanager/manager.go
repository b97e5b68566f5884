package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/linguabridge/internal/dbx"
	"github.com/dmitrijs2005/linguabridge/internal/server/repositories/translations"
	"github.com/dmitrijs2005/linguabridge/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a handle, so services can
// use the same code against *sql.DB or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Translations(db dbx.DBTX) translations.Repository
}
