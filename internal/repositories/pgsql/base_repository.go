package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is satisfied by both *pgxpool.Pool and pgx.Tx, letting a
// repository run the same queries whether or not it is inside a
// transaction.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository bundles a connection pool and gives standalone
// repositories a DB() accessor over it. Transaction-scoped access goes
// through LedgerTxRepo, which holds its pgx.Tx directly.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// DB returns the pool. Repository methods that must run inside a
// transaction take a pgx.Tx argument directly instead.
func (r *BaseRepository) DB() DB {
	return r.Pool
}
