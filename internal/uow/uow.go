// Package uow implements ports.UnitOfWork against pgxpool: begin, run
// the closure, commit on nil error, roll back otherwise (including on
// panic).
package uow

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victorotene80/sirara-core/internal/core/ports"
	"github.com/victorotene80/sirara-core/internal/repositories/pgsql"
)

type contextKey string

const inTxKey = contextKey("uow_in_tx")

// PgUnitOfWork is the pgxpool-backed ports.UnitOfWork.
type PgUnitOfWork struct {
	pool *pgxpool.Pool
}

// New builds a PgUnitOfWork bound to pool.
func New(pool *pgxpool.Pool) *PgUnitOfWork {
	return &PgUnitOfWork{pool: pool}
}

var _ ports.UnitOfWork = (*PgUnitOfWork)(nil)

// WithinTx begins a transaction, hands the closure a ReposInTx scoped
// to it, and commits or rolls back based on the closure's result.
// Nested calls panic: this codebase has no legitimate reason to open a
// second transaction while already inside one, and silently nesting
// would either deadlock or silently run outside the outer transaction.
func (u *PgUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.ReposInTx) error) error {
	if ctx.Value(inTxKey) != nil {
		panic("uow: WithinTx called while already inside a transaction")
	}

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return pgsql.MapPgError(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	txCtx := context.WithValue(ctx, inTxKey, true)
	repos := newReposInTx(tx)

	if err := fn(txCtx, repos); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return pgsql.MapPgError(err)
	}
	return nil
}
