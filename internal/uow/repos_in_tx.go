package uow

import (
	"github.com/jackc/pgx/v5"

	"github.com/victorotene80/sirara-core/internal/core/ports"
	"github.com/victorotene80/sirara-core/internal/repositories/pgsql"
)

// reposInTx is the ports.ReposInTx handed to a WithinTx closure.
type reposInTx struct {
	tx pgx.Tx
}

func newReposInTx(tx pgx.Tx) *reposInTx {
	return &reposInTx{tx: tx}
}

func (r *reposInTx) Ledger() ports.LedgerRepositoryTx {
	return pgsql.NewLedgerTxRepo(r.tx)
}

var _ ports.ReposInTx = (*reposInTx)(nil)
