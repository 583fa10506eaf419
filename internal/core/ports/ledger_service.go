package ports

import (
	"context"
	"math/big"

	"github.com/google/uuid"

	"github.com/victorotene80/sirara-core/internal/domain"
)

// LedgerService is the inward-facing facade a CLI or future transport
// layer calls: account lifecycle plus the one atomic posting
// operation. Teacher-style "SvcFacade" naming.
type LedgerService interface {
	CreateAccount(ctx context.Context, ownerType domain.OwnerType, ownerID *uuid.UUID,
		accountType domain.AccountType, assetID int16) (*domain.LedgerAccount, error)
	SetAccountActive(ctx context.Context, accountID int64, active bool) error
	GetAccountsByIDs(ctx context.Context, accountIDs []int64) ([]*domain.LedgerAccount, error)
	FindPostedByExternalRef(ctx context.Context, refType domain.ExternalRefType, ref domain.ExternalRef) (*domain.PostedJournal, error)
	GetBalance(ctx context.Context, accountID int64) (*big.Int, error)
	PostJournalAtomic(ctx context.Context, draft *domain.JournalDraft, isBatch bool) (*domain.PostedJournal, error)
}
