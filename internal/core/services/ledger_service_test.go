package services_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/victorotene80/sirara-core/internal/apperrors"
	"github.com/victorotene80/sirara-core/internal/core/ports"
	"github.com/victorotene80/sirara-core/internal/core/services"
	"github.com/victorotene80/sirara-core/internal/domain"
	"github.com/victorotene80/sirara-core/internal/postingpolicy"
)

// MockLedgerRepository is a mock of ports.LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) CreateAccount(ctx context.Context, ownerType domain.OwnerType, ownerID *uuid.UUID,
	accountType domain.AccountType, assetID int16) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, ownerType, ownerID, accountType, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerRepository) SetAccountActive(ctx context.Context, accountID int64, active bool) error {
	args := m.Called(ctx, accountID, active)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetAccountsByIDs(ctx context.Context, accountIDs []int64) ([]*domain.LedgerAccount, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerAccount), args.Error(1)
}

func (m *MockLedgerRepository) FindPostedByExternalRef(ctx context.Context, refType domain.ExternalRefType, ref domain.ExternalRef) (*domain.PostedJournal, error) {
	args := m.Called(ctx, refType, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostedJournal), args.Error(1)
}

func (m *MockLedgerRepository) GetBalance(ctx context.Context, accountID int64) (*big.Int, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

// MockUnitOfWork is a mock of ports.UnitOfWork that runs fn against a
// stub ReposInTx whose Ledger() returns the supplied LedgerRepositoryTx.
type MockUnitOfWork struct {
	mock.Mock
	TxRepo ports.LedgerRepositoryTx
}

func (m *MockUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos ports.ReposInTx) error) error {
	m.Called(ctx)
	return fn(ctx, stubReposInTx{ledger: m.TxRepo})
}

type stubReposInTx struct {
	ledger ports.LedgerRepositoryTx
}

func (s stubReposInTx) Ledger() ports.LedgerRepositoryTx { return s.ledger }

// MockLedgerTxRepo is a mock of ports.LedgerRepositoryTx, used only
// for its InsertPostingAtomic method in these tests.
type MockLedgerTxRepo struct {
	MockLedgerRepository
}

func (m *MockLedgerTxRepo) InsertPostingAtomic(ctx context.Context, journal postingpolicy.PolicyValidatedJournal) (*domain.PostedJournal, error) {
	args := m.Called(ctx, journal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostedJournal), args.Error(1)
}

func newTestDraft(t *testing.T, accountA, accountB int64) *domain.JournalDraft {
	t.Helper()
	ref, err := domain.NewExternalRef("svc-test-ref")
	require.NoError(t, err)
	draft, err := domain.NewJournalDraft(domain.NewPublicID(), domain.ExternalRefTransferIntent, ref, nil, "svc-test")
	require.NoError(t, err)
	debit, err := domain.Debit(big.NewInt(100))
	require.NoError(t, err)
	credit, err := domain.Credit(big.NewInt(100))
	require.NoError(t, err)
	draft.AddLine(accountA, debit)
	draft.AddLine(accountB, credit)
	return draft
}

func TestPostJournalAtomic_Success(t *testing.T) {
	owner := uuid.New()
	accA := domain.NewLedgerAccount(1, domain.NewPublicID(), domain.OwnerUser, &owner, domain.AccountUserAvailable, 1, true)
	accB := domain.NewLedgerAccount(2, domain.NewPublicID(), domain.OwnerPlatform, nil, domain.AccountPlatformClearing, 1, true)

	repo := new(MockLedgerRepository)
	repo.On("GetAccountsByIDs", mock.Anything, mock.Anything).Return([]*domain.LedgerAccount{&accA, &accB}, nil)

	txRepo := new(MockLedgerTxRepo)
	posted := &domain.PostedJournal{ID: 42}
	txRepo.On("InsertPostingAtomic", mock.Anything, mock.Anything).Return(posted, nil)

	uowMock := &MockUnitOfWork{TxRepo: txRepo}
	uowMock.On("WithinTx", mock.Anything).Return()

	policy := postingpolicy.NewService(postingpolicy.Limits{})
	svc := services.NewLedgerService(repo, uowMock, policy)

	draft := newTestDraft(t, 1, 2)
	result, err := svc.PostJournalAtomic(context.Background(), draft, false)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.ID)
	repo.AssertExpectations(t)
	txRepo.AssertExpectations(t)
}

func TestPostJournalAtomic_StructuralValidationFailureNeverOpensTx(t *testing.T) {
	// Account not returned by GetAccountsByIDs -> ValidateWithAccounts
	// fails before the unit of work is ever entered.
	repo := new(MockLedgerRepository)
	repo.On("GetAccountsByIDs", mock.Anything, mock.Anything).Return([]*domain.LedgerAccount{}, nil)

	uowMock := &MockUnitOfWork{}
	policy := postingpolicy.NewService(postingpolicy.Limits{})
	svc := services.NewLedgerService(repo, uowMock, policy)

	draft := newTestDraft(t, 1, 2)
	_, err := svc.PostJournalAtomic(context.Background(), draft, false)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindLedgerAccountNotFound))
	uowMock.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestPostJournalAtomic_PolicyFailureNeverOpensTx(t *testing.T) {
	accA := domain.NewLedgerAccount(1, domain.NewPublicID(), domain.OwnerUser, nil, domain.AccountUserAvailable, 1, true)
	accB := domain.NewLedgerAccount(2, domain.NewPublicID(), domain.OwnerPlatform, nil, domain.AccountPlatformClearing, 1, true)

	repo := new(MockLedgerRepository)
	repo.On("GetAccountsByIDs", mock.Anything, mock.Anything).Return([]*domain.LedgerAccount{&accA, &accB}, nil)

	uowMock := &MockUnitOfWork{}
	policy := postingpolicy.NewService(postingpolicy.Limits{})
	svc := services.NewLedgerService(repo, uowMock, policy)

	draft := newTestDraft(t, 1, 2)
	_, err := svc.PostJournalAtomic(context.Background(), draft, false)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindOwnerIDRequired))
	uowMock.AssertNotCalled(t, "WithinTx", mock.Anything)
}
