// Package repomanager vends repositories bound to a database handle and runs
// units of work in a transaction, hiding whether the backing store is
// PostgreSQL or process memory.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/skillhub/internal/dbx"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/principals"
	"github.com/dmitrijs2005/skillhub/internal/server/repositories/refreshtokens"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error

	// Conn is the non-transactional handle passed to the repository factories.
	Conn() dbx.DBTX
	// WithTx runs fn atomically; repositories built from its tx argument
	// take part in the transaction.
	WithTx(ctx context.Context, fn dbx.TxFunc) error

	Primaries(db dbx.DBTX) principals.Repository
	Workers(db dbx.DBTX) principals.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository

	Close() error
}

// Principals returns the principal repository for kind.
func Principals(m RepositoryManager, db dbx.DBTX, kind models.PrincipalKind) principals.Repository {
	if kind == models.KindWorker {
		return m.Workers(db)
	}
	return m.Primaries(db)
}
