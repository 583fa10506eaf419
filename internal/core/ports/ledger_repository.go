// Package ports defines the repository and unit-of-work boundaries the
// services package depends on, kept separate from any concrete
// pgx/Postgres implementation.
package ports

import (
	"context"
	"math/big"

	"github.com/google/uuid"

	"github.com/victorotene80/sirara-core/internal/domain"
	"github.com/victorotene80/sirara-core/internal/postingpolicy"
)

// LedgerReader defines read operations against accounts and their
// balances, usable both inside and outside a transaction.
type LedgerReader interface {
	GetAccountsByIDs(ctx context.Context, accountIDs []int64) ([]*domain.LedgerAccount, error)
	FindPostedByExternalRef(ctx context.Context, refType domain.ExternalRefType, ref domain.ExternalRef) (*domain.PostedJournal, error)
	// GetBalance returns an account's current balance without taking a
	// row lock; callers needing a consistent read-then-post view must
	// go through InsertPostingAtomic instead.
	GetBalance(ctx context.Context, accountID int64) (*big.Int, error)
}

// LedgerWriter defines account-lifecycle writes that do not require
// the posting protocol's multi-row locking.
type LedgerWriter interface {
	CreateAccount(ctx context.Context, ownerType domain.OwnerType, ownerID *uuid.UUID,
		accountType domain.AccountType, assetID int16) (*domain.LedgerAccount, error)
	SetAccountActive(ctx context.Context, accountID int64, active bool) error
}

// LedgerRepository is the facade used outside of an explicit
// transaction: account CRUD and read-only lookups.
type LedgerRepository interface {
	LedgerReader
	LedgerWriter
}

// LedgerRepositoryTx is the facade available inside a UnitOfWork
// transaction, adding the atomic posting protocol.
type LedgerRepositoryTx interface {
	LedgerRepository
	InsertPostingAtomic(ctx context.Context, journal postingpolicy.PolicyValidatedJournal) (*domain.PostedJournal, error)
}

// ReposInTx is handed to a UnitOfWork closure, scoping every
// repository call to the same underlying transaction.
type ReposInTx interface {
	Ledger() LedgerRepositoryTx
}

// UnitOfWork runs fn inside a single database transaction, committing
// on a nil error and rolling back otherwise (including on panic).
// Nested calls are rejected: a UnitOfWork implementation must panic if
// WithinTx is invoked while already inside a transaction scope.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos ReposInTx) error) error
}
