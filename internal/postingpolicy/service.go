// Package postingpolicy enforces cross-cutting rules a structurally
// valid journal must still satisfy before it may be posted: account
// ownership taxonomy, the hold/available pairing constraint, and
// operator-configured line-count and amount caps.
package postingpolicy

import (
	"math/big"

	"github.com/victorotene80/sirara-core/internal/apperrors"
	"github.com/victorotene80/sirara-core/internal/domain"
)

// PolicyValidatedJournal wraps a ValidatedJournal that has additionally
// passed posting-policy checks. Service.Validate is the function that
// runs those checks and returns one; the embedded field is exported, so
// a struct literal can also build one without running them.
type PolicyValidatedJournal struct {
	domain.ValidatedJournal
}

// Limits configures the optional operator-controlled caps. A zero
// value for any field disables that particular cap.
type Limits struct {
	MaxLinesNormal    int
	MaxLinesBatch     int
	MaxAmountAbsMinor *big.Int // per-line cap, the same for every asset; nil disables
}

// Service is the single enforcement point for posting policy: the
// optional caps live here, configured once at startup, rather than as
// a separate domain invariant duplicated across callers.
type Service struct {
	limits Limits
}

// NewService builds a policy Service with the given limits.
func NewService(limits Limits) *Service {
	return &Service{limits: limits}
}

// Validate checks a structurally-validated journal against account
// taxonomy, hold-safety, and configured caps, returning a
// PolicyValidatedJournal ready for the repository to commit.
func (s *Service) Validate(journal domain.ValidatedJournal, accountsByID map[int64]*domain.LedgerAccount, isBatch bool) (*PolicyValidatedJournal, error) {
	if err := s.checkLineCountCap(journal, isBatch); err != nil {
		return nil, err
	}

	netByAccount := make(map[int64]*big.Int, len(journal.Lines))
	for _, line := range journal.Lines {
		account, ok := accountsByID[line.AccountID]
		if !ok {
			return nil, apperrors.NewDomainError(apperrors.KindLedgerAccountNotFound,
				"ledger account %d not found", line.AccountID)
		}

		if err := ensureTaxonomy(account); err != nil {
			return nil, err
		}
		if err := s.checkAmountCap(line, account); err != nil {
			return nil, err
		}

		if existing, ok := netByAccount[line.AccountID]; ok {
			existing.Add(existing, line.Amount.Minor())
		} else {
			netByAccount[line.AccountID] = line.Amount.Minor()
		}
	}

	if err := enforceHoldOwnerConstraint(netByAccount, accountsByID); err != nil {
		return nil, err
	}

	return &PolicyValidatedJournal{ValidatedJournal: journal}, nil
}

func (s *Service) checkLineCountCap(journal domain.ValidatedJournal, isBatch bool) error {
	limit := s.limits.MaxLinesNormal
	if isBatch {
		limit = s.limits.MaxLinesBatch
	}
	if limit > 0 && len(journal.Lines) > limit {
		return apperrors.NewDomainError(apperrors.KindJournalTooManyLines,
			"journal has %d lines, exceeds cap of %d", len(journal.Lines), limit)
	}
	return nil
}

func (s *Service) checkAmountCap(line domain.JournalLine, account *domain.LedgerAccount) error {
	if s.limits.MaxAmountAbsMinor == nil {
		return nil
	}
	abs := new(big.Int).Abs(line.Amount.Minor())
	if abs.Cmp(s.limits.MaxAmountAbsMinor) > 0 {
		return apperrors.NewDomainError(apperrors.KindAmountCapExceeded,
			"line amount %s for account %d (asset %d) exceeds per-line cap %s",
			line.Amount.Minor().String(), account.ID, account.AssetID, s.limits.MaxAmountAbsMinor.String())
	}
	return nil
}

// ensureTaxonomy checks the account's OwnerType matches what its
// AccountType requires, and that user-owned buckets carry an owner ID.
func ensureTaxonomy(account *domain.LedgerAccount) error {
	expected := account.AccountType.ExpectedOwnerType()
	if account.OwnerType != expected {
		return apperrors.NewDomainError(apperrors.KindAccountOwnerTypeMismatch,
			"account %d: expected owner type %s, got %s", account.ID, expected, account.OwnerType)
	}
	if expected == domain.OwnerUser && account.OwnerID == nil {
		return apperrors.NewDomainError(apperrors.KindOwnerIDRequired,
			"account %d: owner id required for user-owned account", account.ID)
	}
	return nil
}

// enforceHoldOwnerConstraint requires that when a journal touches both
// a USER_AVAILABLE and a USER_LOCKED account with nonzero net movement,
// there is exactly one of each and they share the same owner.
func enforceHoldOwnerConstraint(netByAccount map[int64]*big.Int, accountsByID map[int64]*domain.LedgerAccount) error {
	var available, locked []*domain.LedgerAccount
	for accountID, net := range netByAccount {
		if net.Sign() == 0 {
			continue
		}
		account := accountsByID[accountID]
		switch account.AccountType {
		case domain.AccountUserAvailable:
			available = append(available, account)
		case domain.AccountUserLocked:
			locked = append(locked, account)
		}
	}

	if len(available) == 0 || len(locked) == 0 {
		return nil
	}

	if len(available) != 1 || len(locked) != 1 {
		return apperrors.NewDomainError(apperrors.KindHoldPostingAmbiguous,
			"hold posting touches %d available and %d locked accounts, expected exactly one of each",
			len(available), len(locked))
	}

	availableOwner := available[0].OwnerID
	lockedOwner := locked[0].OwnerID
	if availableOwner == nil || lockedOwner == nil || *availableOwner != *lockedOwner {
		return apperrors.NewDomainError(apperrors.KindHoldMustBeSameUser,
			"hold posting between account %d and account %d must share the same owner",
			available[0].ID, locked[0].ID)
	}

	return nil
}
