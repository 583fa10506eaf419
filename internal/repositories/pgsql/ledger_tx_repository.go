package pgsql

import (
	"context"
	"math/big"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/victorotene80/sirara-core/internal/apperrors"
	"github.com/victorotene80/sirara-core/internal/core/ports"
	"github.com/victorotene80/sirara-core/internal/domain"
	"github.com/victorotene80/sirara-core/internal/postingpolicy"
)

// LedgerTxRepo is the transaction-scoped repository handed out by a
// ReposInTx; it is the only place InsertPostingAtomic can run, since
// the protocol requires row locks held for the lifetime of a single
// transaction. It does not embed LedgerRepository: Go has no virtual
// dispatch, so a promoted method would keep calling the embedded
// struct's own DB() rather than this one's transaction.
type LedgerTxRepo struct {
	tx pgx.Tx
}

// NewLedgerTxRepo wraps tx, the transaction every method below reads
// and writes through.
func NewLedgerTxRepo(tx pgx.Tx) *LedgerTxRepo {
	return &LedgerTxRepo{tx: tx}
}

func (r *LedgerTxRepo) CreateAccount(ctx context.Context, ownerType domain.OwnerType, ownerID *uuid.UUID,
	accountType domain.AccountType, assetID int16) (*domain.LedgerAccount, error) {
	return createAccount(ctx, r.tx, ownerType, ownerID, accountType, assetID)
}

func (r *LedgerTxRepo) SetAccountActive(ctx context.Context, accountID int64, active bool) error {
	return setAccountActive(ctx, r.tx, accountID, active)
}

func (r *LedgerTxRepo) GetAccountsByIDs(ctx context.Context, accountIDs []int64) ([]*domain.LedgerAccount, error) {
	return getAccountsByIDs(ctx, r.tx, accountIDs)
}

func (r *LedgerTxRepo) FindPostedByExternalRef(ctx context.Context, refType domain.ExternalRefType, ref domain.ExternalRef) (*domain.PostedJournal, error) {
	return findPostedByExternalRef(ctx, r.tx, refType, ref)
}

func (r *LedgerTxRepo) GetBalance(ctx context.Context, accountID int64) (*big.Int, error) {
	return getBalance(ctx, r.tx, accountID)
}

var _ ports.LedgerRepositoryTx = (*LedgerTxRepo)(nil)

func isSpendableBucket(t domain.AccountType) bool { return t.IsSpendableBucket() }

// fetchAccountsForUpdate locks every account row, sorted ascending by
// id to avoid deadlocks between concurrently posting transactions that
// share accounts.
func fetchAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []int64) ([]*domain.LedgerAccount, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, public_id, owner_type, owner_id, account_type, asset_id, is_active
		FROM ledger_accounts
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, accountIDs)
	if err != nil {
		return nil, MapPgError(err)
	}
	defer rows.Close()
	return scanLedgerAccounts(rows)
}

// insertOrGetTxID realizes the idempotent header insert: a fresh
// posting creates the row and returns its id; a replayed external ref
// finds the existing row instead.
func insertOrGetTxID(ctx context.Context, tx pgx.Tx, journal postingpolicy.PolicyValidatedJournal) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO journal_transactions (public_id, external_ref_type, external_ref, description, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_ref_type, external_ref) DO NOTHING
		RETURNING id`,
		journal.PublicID.String(), string(journal.ExternalRefType), string(journal.ExternalRef),
		journal.Description, journal.CreatedBy,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return 0, MapPgError(err)
	}

	err = tx.QueryRow(ctx, `
		SELECT id FROM journal_transactions WHERE external_ref_type = $1 AND external_ref = $2`,
		string(journal.ExternalRefType), string(journal.ExternalRef),
	).Scan(&id)
	if err != nil {
		return 0, MapPgError(err)
	}
	return id, nil
}

// txHasLines reports whether a header row already has committed lines
// (the replay check).
func txHasLines(ctx context.Context, tx pgx.Tx, txID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM journal_lines WHERE journal_tx_id = $1)`, txID).Scan(&exists)
	if err != nil {
		return false, MapPgError(err)
	}
	return exists, nil
}

// ensureSingleAsset verifies every account in accountIDs shares one
// asset, returning that asset.
func ensureSingleAsset(ctx context.Context, tx pgx.Tx, accountIDs []int64) (int16, error) {
	var distinctCount int
	if err := tx.QueryRow(ctx, `SELECT COUNT(DISTINCT asset_id) FROM ledger_accounts WHERE id = ANY($1)`, accountIDs).Scan(&distinctCount); err != nil {
		return 0, MapPgError(err)
	}
	if distinctCount != 1 {
		return 0, apperrors.NewIntegrityError("posting spans %d distinct assets, expected 1", distinctCount)
	}
	var assetID int16
	if err := tx.QueryRow(ctx, `SELECT asset_id FROM ledger_accounts WHERE id = $1`, accountIDs[0]).Scan(&assetID); err != nil {
		return 0, MapPgError(err)
	}
	return assetID, nil
}

// lockAndFetchBalances locks every balance row, sorted ascending by
// account_id (same lock order as fetchAccountsForUpdate), and converts
// each to a minor-unit big.Int.
func lockAndFetchBalances(ctx context.Context, tx pgx.Tx, accountIDs []int64) (map[int64]*big.Int, error) {
	rows, err := tx.Query(ctx, `
		SELECT account_id, balance FROM ledger_account_balances
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE`, accountIDs)
	if err != nil {
		return nil, MapPgError(err)
	}
	defer rows.Close()

	current := make(map[int64]*big.Int, len(accountIDs))
	for rows.Next() {
		var (
			accountID int64
			balance   decimal.Decimal
		)
		if err := rows.Scan(&accountID, &balance); err != nil {
			return nil, MapPgError(err)
		}
		minor, err := numericToMinorStrict(balance, accountID)
		if err != nil {
			return nil, err
		}
		current[accountID] = minor
	}
	if err := rows.Err(); err != nil {
		return nil, MapPgError(err)
	}
	if len(current) != len(accountIDs) {
		return nil, apperrors.NewIntegrityError("missing balance row for one or more of %v", accountIDs)
	}
	return current, nil
}

// bulkInsertLines inserts every journal line in one round trip via
// UNNEST, via a single UNNEST-backed statement. ON CONFLICT DO NOTHING guards the rare race where
// two goroutines attempt to insert the same (journal_tx_id,
// account_id) pair concurrently; the caller interprets a zero
// RowsAffected as "someone else already inserted these lines".
func bulkInsertLines(ctx context.Context, tx pgx.Tx, txID int64, accountIDs []int64, amounts []*big.Int) (int64, error) {
	amountStrs := make([]string, len(amounts))
	for i, a := range amounts {
		amountStrs[i] = a.String()
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO journal_lines (journal_tx_id, account_id, amount)
		SELECT $1, x.account_id, x.amount
		FROM UNNEST($2::bigint[], $3::numeric[]) AS x(account_id, amount)
		ON CONFLICT (journal_tx_id, account_id) DO NOTHING`,
		txID, accountIDs, amountStrs)
	if err != nil {
		return 0, MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

// applyBalanceDeltas bulk-updates every affected balance row in one
// round trip, verifying the expected number of rows changed.
func applyBalanceDeltas(ctx context.Context, tx pgx.Tx, delta map[int64]*big.Int) error {
	accountIDs := make([]int64, 0, len(delta))
	deltaStrs := make([]string, 0, len(delta))
	for accountID, d := range delta {
		accountIDs = append(accountIDs, accountID)
		deltaStrs = append(deltaStrs, d.String())
	}

	tag, err := tx.Exec(ctx, `
		UPDATE ledger_account_balances b
		SET balance = b.balance + x.delta, updated_at = now()
		FROM UNNEST($1::bigint[], $2::numeric[]) AS x(account_id, delta)
		WHERE b.account_id = x.account_id`,
		accountIDs, deltaStrs)
	if err != nil {
		return MapPgError(err)
	}
	if int(tag.RowsAffected()) != len(accountIDs) {
		return apperrors.NewIntegrityError("balance update affected %d rows, expected %d", tag.RowsAffected(), len(accountIDs))
	}
	return nil
}

// InsertPostingAtomic is the canonical 10-step atomic commit protocol:
// idempotent header insert, replay detection, locked account fetch and
// activity check, single-asset check, locked balance fetch, checked
// delta computation, spendable-bucket non-negativity check, bulk line
// insert (itself a second replay guard), balance update, and final
// read-back.
func (r *LedgerTxRepo) InsertPostingAtomic(ctx context.Context, journal postingpolicy.PolicyValidatedJournal) (*domain.PostedJournal, error) {
	tx := r.tx

	// Step 1: idempotent header insert / lookup.
	txID, err := insertOrGetTxID(ctx, tx, journal)
	if err != nil {
		return nil, err
	}

	// Step 2: replay detection.
	hasLines, err := txHasLines(ctx, tx, txID)
	if err != nil {
		return nil, err
	}
	if hasLines {
		return loadPostedByTxID(ctx, tx, txID)
	}

	// Step 3: collect, sort, dedup account IDs; lock and verify.
	accountIDs := sortedUniqueAccountIDs(journal.Lines)
	accounts, err := fetchAccountsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}
	if len(accounts) != len(accountIDs) {
		return nil, apperrors.NewNotFoundError("one or more ledger accounts in %v not found", accountIDs)
	}
	accountsByID := make(map[int64]*domain.LedgerAccount, len(accounts))
	for _, a := range accounts {
		accountsByID[a.ID] = a
		if err := a.EnsureActive(); err != nil {
			return nil, err
		}
	}

	// Step 4: single-asset check.
	if _, err := ensureSingleAsset(ctx, tx, accountIDs); err != nil {
		return nil, err
	}

	// Step 5: locked balance fetch.
	current, err := lockAndFetchBalances(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	// Step 6: checked delta computation per account.
	delta := make(map[int64]*big.Int, len(journal.Lines))
	for _, line := range journal.Lines {
		existing, ok := delta[line.AccountID]
		if !ok {
			delta[line.AccountID] = line.Amount.Minor()
			continue
		}
		sum, err := domain.AddChecked(existing, line.Amount.Minor())
		if err != nil {
			return nil, err
		}
		delta[line.AccountID] = sum
	}

	// Step 7: spendable-bucket non-negativity check.
	for accountID, d := range delta {
		account := accountsByID[accountID]
		if !isSpendableBucket(account.AccountType) {
			continue
		}
		next, err := domain.AddChecked(current[accountID], d)
		if err != nil {
			return nil, err
		}
		if next.Sign() < 0 {
			return nil, apperrors.NewConflictError("insufficient funds for account %d: balance would become %s", accountID, next.String())
		}
	}

	// Step 8: bulk line insert, itself a second idempotency guard.
	insertIDs := make([]int64, 0, len(journal.Lines))
	insertAmounts := make([]*big.Int, 0, len(journal.Lines))
	for _, line := range journal.Lines {
		insertIDs = append(insertIDs, line.AccountID)
		insertAmounts = append(insertAmounts, line.Amount.Minor())
	}
	inserted, err := bulkInsertLines(ctx, tx, txID, insertIDs, insertAmounts)
	if err != nil {
		return nil, err
	}
	if inserted == 0 {
		return loadPostedByTxID(ctx, tx, txID)
	}
	if int(inserted) != len(journal.Lines) {
		return nil, apperrors.NewIntegrityError("partial line insert: inserted %d of %d lines for tx %d", inserted, len(journal.Lines), txID)
	}

	// Step 9: apply balance deltas.
	if err := applyBalanceDeltas(ctx, tx, delta); err != nil {
		return nil, err
	}

	// Step 10: final read-back.
	return loadPostedByTxID(ctx, tx, txID)
}

func sortedUniqueAccountIDs(lines []domain.JournalLine) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
