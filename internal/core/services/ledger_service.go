// Package services orchestrates the domain aggregate, the posting
// policy service, and the unit of work into the inward-facing
// ports.LedgerService contract.
package services

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/google/uuid"

	"github.com/victorotene80/sirara-core/internal/apperrors"
	"github.com/victorotene80/sirara-core/internal/core/ports"
	"github.com/victorotene80/sirara-core/internal/domain"
	"github.com/victorotene80/sirara-core/internal/ledgerctx"
	"github.com/victorotene80/sirara-core/internal/postingpolicy"
)

// ledgerService is the default ports.LedgerService implementation.
type ledgerService struct {
	repo   ports.LedgerRepository
	uow    ports.UnitOfWork
	policy *postingpolicy.Service
}

// NewLedgerService wires a ledgerService from its collaborators.
func NewLedgerService(repo ports.LedgerRepository, uow ports.UnitOfWork, policy *postingpolicy.Service) ports.LedgerService {
	return &ledgerService{repo: repo, uow: uow, policy: policy}
}

var _ ports.LedgerService = (*ledgerService)(nil)

func (s *ledgerService) CreateAccount(ctx context.Context, ownerType domain.OwnerType, ownerID *uuid.UUID,
	accountType domain.AccountType, assetID int16) (*domain.LedgerAccount, error) {
	return s.repo.CreateAccount(ctx, ownerType, ownerID, accountType, assetID)
}

func (s *ledgerService) SetAccountActive(ctx context.Context, accountID int64, active bool) error {
	return s.repo.SetAccountActive(ctx, accountID, active)
}

func (s *ledgerService) GetAccountsByIDs(ctx context.Context, accountIDs []int64) ([]*domain.LedgerAccount, error) {
	return s.repo.GetAccountsByIDs(ctx, accountIDs)
}

func (s *ledgerService) FindPostedByExternalRef(ctx context.Context, refType domain.ExternalRefType, ref domain.ExternalRef) (*domain.PostedJournal, error) {
	return s.repo.FindPostedByExternalRef(ctx, refType, ref)
}

func (s *ledgerService) GetBalance(ctx context.Context, accountID int64) (*big.Int, error) {
	return s.repo.GetBalance(ctx, accountID)
}

// PostJournalAtomic runs the full pipeline: structural validation
// against the current account set, policy validation, then the
// atomic repository commit protocol inside a single transaction.
func (s *ledgerService) PostJournalAtomic(ctx context.Context, draft *domain.JournalDraft, isBatch bool) (*domain.PostedJournal, error) {
	ctx = ledgerctx.WithActor(ctx, draft.CreatedBy)
	logger := s.loggerFor(ctx, draft)

	accountIDs := uniqueAccountIDs(draft.Lines)
	accounts, err := s.repo.GetAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Warn("failed to load accounts for journal validation", slog.String("error", err.Error()))
		return nil, err
	}

	accountsByID := make(map[int64]*domain.LedgerAccount, len(accounts))
	for _, a := range accounts {
		accountsByID[a.ID] = a
	}

	validated, err := draft.ValidateWithAccounts(accountsByID)
	if err != nil {
		logger.Info("journal failed structural validation", slog.String("error", err.Error()))
		return nil, err
	}

	policyValidated, err := s.policy.Validate(*validated, accountsByID, isBatch)
	if err != nil {
		logger.Info("journal failed posting policy validation", slog.String("error", err.Error()))
		return nil, err
	}

	var posted *domain.PostedJournal
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.ReposInTx) error {
		p, txErr := repos.Ledger().InsertPostingAtomic(ctx, *policyValidated)
		if txErr != nil {
			return txErr
		}
		posted = p
		return nil
	})
	if err != nil {
		if apperrors.Retryable(err) {
			logger.Warn("transient error posting journal, caller may retry", slog.String("error", err.Error()))
		} else {
			logger.Error("failed to post journal", slog.String("error", err.Error()))
		}
		return nil, err
	}

	logger.Info("journal posted", slog.Int64("journal_id", posted.ID))
	return posted, nil
}

// loggerFor returns the context-scoped logger enriched with the
// fields every log line in this pipeline carries: the external ref
// identifying the journal and, when set, the actor and operation ID
// recorded on ctx.
func (s *ledgerService) loggerFor(ctx context.Context, draft *domain.JournalDraft) *slog.Logger {
	logger := ledgerctx.FromContext(ctx).With(slog.String("external_ref", draft.ExternalRef.String()))
	if actor, ok := ledgerctx.ActorFromContext(ctx); ok {
		logger = logger.With(slog.String("actor", actor))
	}
	if opID, ok := ledgerctx.OperationID(ctx); ok {
		logger = logger.With(slog.String("op_id", opID))
	}
	return logger
}

func uniqueAccountIDs(lines []domain.JournalLineDraft) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}
