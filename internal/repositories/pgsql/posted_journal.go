package pgsql

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/victorotene80/sirara-core/internal/apperrors"
	"github.com/victorotene80/sirara-core/internal/domain"
)

// loadPostedByTxID loads a journal's header and lines, ordered by
// line id ascending, and derives the journal's asset from its first
// line's account. A journal with zero lines can only be observed
// mid-transaction before lines are inserted, never after commit.
func loadPostedByTxID(ctx context.Context, db DB, txID int64) (*domain.PostedJournal, error) {
	var (
		externalRefType string
		externalRef     string
		description     *string
		createdBy       string
		publicIDStr     string
	)
	err := db.QueryRow(ctx, `
		SELECT public_id, external_ref_type, external_ref, description, created_by
		FROM journal_transactions WHERE id = $1`, txID,
	).Scan(&publicIDStr, &externalRefType, &externalRef, &description, &createdBy)
	if err != nil {
		return nil, MapPgError(err)
	}
	publicID, err := domain.ParsePublicID(publicIDStr)
	if err != nil {
		return nil, apperrors.NewIntegrityError("stored public_id %q is not a valid UUID", publicIDStr)
	}

	rows, err := db.Query(ctx, `
		SELECT jl.account_id, jl.amount, la.asset_id
		FROM journal_lines jl
		JOIN ledger_accounts la ON la.id = jl.account_id
		WHERE jl.journal_tx_id = $1
		ORDER BY jl.id ASC`, txID)
	if err != nil {
		return nil, MapPgError(err)
	}
	defer rows.Close()

	var (
		lines   []domain.JournalLine
		assetID int16
	)
	first := true
	for rows.Next() {
		var (
			accountID   int64
			amountDec   decimal.Decimal
			lineAssetID int16
		)
		if err := rows.Scan(&accountID, &amountDec, &lineAssetID); err != nil {
			return nil, MapPgError(err)
		}
		minor, err := numericToMinorStrict(amountDec, accountID)
		if err != nil {
			return nil, err
		}
		amount, err := domain.FromSignedMinor(minor)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.JournalLine{AccountID: accountID, Amount: amount})
		if first {
			assetID = lineAssetID
			first = false
		}
	}
	if err := rows.Err(); err != nil {
		return nil, MapPgError(err)
	}

	validated := domain.ValidatedJournal{
		PublicID:        publicID,
		ExternalRefType: domain.ExternalRefType(externalRefType),
		ExternalRef:     domain.ExternalRef(externalRef),
		Description:     description,
		CreatedBy:       createdBy,
		AssetID:         assetID,
		Lines:           lines,
	}
	posted := validated.IntoPosted(txID)
	return &posted, nil
}

// numericToMinorStrict converts a numeric(38,0) scan value to a
// minor-unit big.Int, rejecting any fractional component.
func numericToMinorStrict(v decimal.Decimal, accountID int64) (*big.Int, error) {
	if v.Exponent() < 0 && !v.Equal(v.Truncate(0)) {
		return nil, apperrors.NewIntegrityError("non-integer balance stored for account %d: %s", accountID, v.String())
	}
	s := v.Truncate(0).String()
	minor, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, apperrors.NewIntegrityError("could not parse stored amount %q for account %d", s, accountID)
	}
	return minor, nil
}
