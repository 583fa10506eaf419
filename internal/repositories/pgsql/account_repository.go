package pgsql

import (
	"context"
	"math/big"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/victorotene80/sirara-core/internal/apperrors"
	"github.com/victorotene80/sirara-core/internal/domain"
)

// LedgerRepository is the standalone (non-transactional) account
// facade: CreateAccount, SetAccountActive, GetAccountsByIDs,
// FindPostedByExternalRef. Posting itself only happens inside a
// transaction, via LedgerTxRepo.
type LedgerRepository struct {
	BaseRepository
}

// NewLedgerRepository builds a LedgerRepository bound to pool.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{BaseRepository{Pool: pool}}
}

func (r *LedgerRepository) CreateAccount(ctx context.Context, ownerType domain.OwnerType, ownerID *uuid.UUID,
	accountType domain.AccountType, assetID int16) (*domain.LedgerAccount, error) {
	return createAccount(ctx, r.DB(), ownerType, ownerID, accountType, assetID)
}

func (r *LedgerRepository) SetAccountActive(ctx context.Context, accountID int64, active bool) error {
	return setAccountActive(ctx, r.DB(), accountID, active)
}

func (r *LedgerRepository) GetAccountsByIDs(ctx context.Context, accountIDs []int64) ([]*domain.LedgerAccount, error) {
	return getAccountsByIDs(ctx, r.DB(), accountIDs)
}

func (r *LedgerRepository) FindPostedByExternalRef(ctx context.Context, refType domain.ExternalRefType, ref domain.ExternalRef) (*domain.PostedJournal, error) {
	return findPostedByExternalRef(ctx, r.DB(), refType, ref)
}

func (r *LedgerRepository) GetBalance(ctx context.Context, accountID int64) (*big.Int, error) {
	return getBalance(ctx, r.DB(), accountID)
}

// createAccount inserts a new ledger account and its zero-balance row.
func createAccount(ctx context.Context, db DB, ownerType domain.OwnerType, ownerID *uuid.UUID,
	accountType domain.AccountType, assetID int16) (*domain.LedgerAccount, error) {
	publicID := domain.NewPublicID()

	var id int64
	err := db.QueryRow(ctx, `
		INSERT INTO ledger_accounts (public_id, owner_type, owner_id, account_type, asset_id, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id`,
		uuid.UUID(publicID), string(ownerType), ownerID, string(accountType), assetID,
	).Scan(&id)
	if err != nil {
		return nil, MapPgError(err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO ledger_account_balances (account_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (account_id) DO NOTHING`, id)
	if err != nil {
		return nil, MapPgError(err)
	}

	account := domain.NewLedgerAccount(id, publicID, ownerType, ownerID, accountType, assetID, true)
	return &account, nil
}

// setAccountActive flips the is_active flag. Idempotent: setting an
// already-matching state is not an error.
func setAccountActive(ctx context.Context, db DB, accountID int64, active bool) error {
	tag, err := db.Exec(ctx, `UPDATE ledger_accounts SET is_active = $1 WHERE id = $2`, active, accountID)
	if err != nil {
		return MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("ledger account %d", accountID)
	}
	return nil
}

// getAccountsByIDs loads accounts without locking, for read-only
// lookups and validation outside the posting transaction.
func getAccountsByIDs(ctx context.Context, db DB, accountIDs []int64) ([]*domain.LedgerAccount, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	rows, err := db.Query(ctx, `
		SELECT id, public_id, owner_type, owner_id, account_type, asset_id, is_active
		FROM ledger_accounts
		WHERE id = ANY($1)`, accountIDs)
	if err != nil {
		return nil, MapPgError(err)
	}
	defer rows.Close()

	return scanLedgerAccounts(rows)
}

// findPostedByExternalRef looks up a journal by its idempotency key.
func findPostedByExternalRef(ctx context.Context, db DB, refType domain.ExternalRefType, ref domain.ExternalRef) (*domain.PostedJournal, error) {
	var txID int64
	err := db.QueryRow(ctx, `
		SELECT id FROM journal_transactions
		WHERE external_ref_type = $1 AND external_ref = $2`,
		string(refType), string(ref),
	).Scan(&txID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFoundError("journal with external ref %s/%s", refType, ref)
		}
		return nil, MapPgError(err)
	}
	return loadPostedByTxID(ctx, db, txID)
}

// getBalance reads an account's balance without locking the row.
func getBalance(ctx context.Context, db DB, accountID int64) (*big.Int, error) {
	var balance decimal.Decimal
	err := db.QueryRow(ctx, `SELECT balance FROM ledger_account_balances WHERE account_id = $1`, accountID).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFoundError("balance for ledger account %d", accountID)
		}
		return nil, MapPgError(err)
	}
	return numericToMinorStrict(balance, accountID)
}

func scanLedgerAccounts(rows pgx.Rows) ([]*domain.LedgerAccount, error) {
	var accounts []*domain.LedgerAccount
	for rows.Next() {
		var (
			id          int64
			publicID    uuid.UUID
			ownerType   string
			ownerID     *uuid.UUID
			accountType string
			assetID     int16
			isActive    bool
		)
		if err := rows.Scan(&id, &publicID, &ownerType, &ownerID, &accountType, &assetID, &isActive); err != nil {
			return nil, MapPgError(err)
		}
		account := domain.NewLedgerAccount(id, domain.PublicID(publicID), domain.OwnerType(ownerType),
			ownerID, domain.AccountType(accountType), assetID, isActive)
		accounts = append(accounts, &account)
	}
	if err := rows.Err(); err != nil {
		return nil, MapPgError(err)
	}
	return accounts, nil
}
