package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bakerykit/internal/dbx"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/carts"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/codes"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/bakerykit/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so services can run
// the same repository inside or outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ResetCodes(db dbx.DBTX) codes.ResetRepository
	Challenges(db dbx.DBTX) codes.ChallengeRepository
	Carts(db dbx.DBTX) carts.Repository
}
