package domain_test

import (
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorotene80/sirara-core/internal/apperrors"
	"github.com/victorotene80/sirara-core/internal/domain"
)

func activeAccount(id int64, assetID int16) *domain.LedgerAccount {
	owner := uuid.New()
	account := domain.NewLedgerAccount(id, domain.NewPublicID(), domain.OwnerUser, &owner, domain.AccountUserAvailable, assetID, true)
	return &account
}

func newDraft(t *testing.T) *domain.JournalDraft {
	t.Helper()
	ref, err := domain.NewExternalRef("order-123")
	require.NoError(t, err)
	draft, err := domain.NewJournalDraft(domain.NewPublicID(), domain.ExternalRefTransferIntent, ref, nil, "svc-payments")
	require.NoError(t, err)
	return draft
}

func TestNewJournalDraft_RejectsEmptyCreatedBy(t *testing.T) {
	ref, err := domain.NewExternalRef("order-1")
	require.NoError(t, err)
	_, err = domain.NewJournalDraft(domain.NewPublicID(), domain.ExternalRefTransferIntent, ref, nil, "   ")
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindCreatedByEmpty))
}

func TestValidateWithAccounts_RejectsEmptyJournal(t *testing.T) {
	draft := newDraft(t)
	_, err := draft.ValidateWithAccounts(map[int64]*domain.LedgerAccount{})
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindJournalEmpty))
}

func TestValidateWithAccounts_RejectsUnbalancedJournal(t *testing.T) {
	draft := newDraft(t)
	debit, err := domain.Debit(big.NewInt(100))
	require.NoError(t, err)
	credit, err := domain.Credit(big.NewInt(50))
	require.NoError(t, err)
	draft.AddLine(1, debit)
	draft.AddLine(2, credit)

	accounts := map[int64]*domain.LedgerAccount{1: activeAccount(1, 1), 2: activeAccount(2, 1)}
	_, err = draft.ValidateWithAccounts(accounts)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindJournalNotBalanced))
}

func TestValidateWithAccounts_AcceptsBalancedTwoLineJournal(t *testing.T) {
	draft := newDraft(t)
	debit, err := domain.Debit(big.NewInt(100))
	require.NoError(t, err)
	credit, err := domain.Credit(big.NewInt(100))
	require.NoError(t, err)
	draft.AddLine(1, debit)
	draft.AddLine(2, credit)

	accounts := map[int64]*domain.LedgerAccount{1: activeAccount(1, 1), 2: activeAccount(2, 1)}
	validated, err := draft.ValidateWithAccounts(accounts)
	require.NoError(t, err)
	assert.Equal(t, int16(1), validated.AssetID)
	assert.Len(t, validated.Lines, 2)
}

func TestValidateWithAccounts_CompressesNetZeroToEmpty(t *testing.T) {
	draft := newDraft(t)
	// A -> B then B -> A for the same amount nets every account to
	// zero; the journal as a whole is balanced but carries no real
	// movement once compressed.
	debit, err := domain.Debit(big.NewInt(100))
	require.NoError(t, err)
	credit, err := domain.Credit(big.NewInt(100))
	require.NoError(t, err)
	debit2, err := domain.Debit(big.NewInt(100))
	require.NoError(t, err)
	credit2, err := domain.Credit(big.NewInt(100))
	require.NoError(t, err)

	draft.AddLine(1, debit)
	draft.AddLine(2, credit)
	draft.AddLine(2, debit2)
	draft.AddLine(1, credit2)

	accounts := map[int64]*domain.LedgerAccount{1: activeAccount(1, 1), 2: activeAccount(2, 1)}
	_, err = draft.ValidateWithAccounts(accounts)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindJournalEmpty))
}

func TestValidateWithAccounts_NetsMultipleLinesPerAccount(t *testing.T) {
	draft := newDraft(t)
	debit1, err := domain.Debit(big.NewInt(60))
	require.NoError(t, err)
	debit2, err := domain.Debit(big.NewInt(40))
	require.NoError(t, err)
	credit, err := domain.Credit(big.NewInt(100))
	require.NoError(t, err)

	draft.AddLine(1, debit1)
	draft.AddLine(1, debit2)
	draft.AddLine(2, credit)

	accounts := map[int64]*domain.LedgerAccount{1: activeAccount(1, 1), 2: activeAccount(2, 1)}
	validated, err := draft.ValidateWithAccounts(accounts)
	require.NoError(t, err)
	require.Len(t, validated.Lines, 2)
	for _, l := range validated.Lines {
		if l.AccountID == 1 {
			assert.Equal(t, big.NewInt(100), l.Amount.Minor())
		}
	}
}

func TestValidateWithAccounts_RejectsCrossAssetPosting(t *testing.T) {
	draft := newDraft(t)
	debit, err := domain.Debit(big.NewInt(100))
	require.NoError(t, err)
	credit, err := domain.Credit(big.NewInt(100))
	require.NoError(t, err)
	draft.AddLine(1, debit)
	draft.AddLine(2, credit)

	accounts := map[int64]*domain.LedgerAccount{1: activeAccount(1, 1), 2: activeAccount(2, 2)}
	_, err = draft.ValidateWithAccounts(accounts)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindCrossAssetPosting))
}

func TestValidateWithAccounts_RejectsInactiveAccount(t *testing.T) {
	draft := newDraft(t)
	debit, err := domain.Debit(big.NewInt(100))
	require.NoError(t, err)
	credit, err := domain.Credit(big.NewInt(100))
	require.NoError(t, err)
	draft.AddLine(1, debit)
	draft.AddLine(2, credit)

	inactive := activeAccount(2, 1)
	inactive.IsActive = false
	accounts := map[int64]*domain.LedgerAccount{1: activeAccount(1, 1), 2: inactive}
	_, err = draft.ValidateWithAccounts(accounts)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindLedgerAccountInactive))
}

func TestValidateWithAccounts_RejectsUnknownAccount(t *testing.T) {
	draft := newDraft(t)
	debit, err := domain.Debit(big.NewInt(100))
	require.NoError(t, err)
	credit, err := domain.Credit(big.NewInt(100))
	require.NoError(t, err)
	draft.AddLine(1, debit)
	draft.AddLine(2, credit)

	accounts := map[int64]*domain.LedgerAccount{1: activeAccount(1, 1)}
	_, err = draft.ValidateWithAccounts(accounts)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindLedgerAccountNotFound))
}
