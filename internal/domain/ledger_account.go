package domain

import (
	"github.com/google/uuid"

	"github.com/victorotene80/sirara-core/internal/apperrors"
)

// OwnerType classifies who an account's balance belongs to.
type OwnerType string

const (
	OwnerUser     OwnerType = "USER"
	OwnerPlatform OwnerType = "PLATFORM"
	OwnerTreasury OwnerType = "TREASURY"
)

// AccountType is the bucket an account lives in within the chart of
// accounts. Each bucket maps to exactly one OwnerType (enforced by the
// posting policy service, not here).
type AccountType string

const (
	AccountUserAvailable      AccountType = "USER_AVAILABLE"
	AccountUserLocked         AccountType = "USER_LOCKED"
	AccountPlatformClearing   AccountType = "PLATFORM_CLEARING"
	AccountTreasuryAvailable  AccountType = "TREASURY_AVAILABLE"
	AccountTreasuryLocked     AccountType = "TREASURY_LOCKED"
	AccountInventoryAvailable AccountType = "INVENTORY_AVAILABLE"
	AccountInventoryLocked    AccountType = "INVENTORY_LOCKED"
)

// IsSpendableBucket reports whether balances of this account type are
// subject to the non-negativity invariant.
func (t AccountType) IsSpendableBucket() bool {
	switch t {
	case AccountUserAvailable, AccountTreasuryAvailable, AccountInventoryAvailable:
		return true
	default:
		return false
	}
}

// ExpectedOwnerType returns the OwnerType every account of this
// AccountType must carry.
func (t AccountType) ExpectedOwnerType() OwnerType {
	switch t {
	case AccountUserAvailable, AccountUserLocked:
		return OwnerUser
	case AccountPlatformClearing, AccountInventoryAvailable, AccountInventoryLocked:
		return OwnerPlatform
	case AccountTreasuryAvailable, AccountTreasuryLocked:
		return OwnerTreasury
	default:
		return ""
	}
}

// LedgerAccount is a postable account: one asset, one owner, a single
// spendable-or-not bucket.
type LedgerAccount struct {
	ID          int64
	PublicID    PublicID
	OwnerType   OwnerType
	OwnerID     *uuid.UUID
	AccountType AccountType
	AssetID     int16
	IsActive    bool
}

// NewLedgerAccount constructs a LedgerAccount from already-validated
// fields (no further invariant checks are needed for the zero-value
// combinations a repository read returns).
func NewLedgerAccount(id int64, publicID PublicID, ownerType OwnerType, ownerID *uuid.UUID,
	accountType AccountType, assetID int16, isActive bool) LedgerAccount {
	return LedgerAccount{
		ID: id, PublicID: publicID, OwnerType: ownerType, OwnerID: ownerID,
		AccountType: accountType, AssetID: assetID, IsActive: isActive,
	}
}

// EnsureActive returns a LedgerAccountInactive DomainError if the
// account cannot currently be posted to.
func (a LedgerAccount) EnsureActive() error {
	if !a.IsActive {
		return apperrors.NewDomainError(apperrors.KindLedgerAccountInactive,
			"ledger account %d is inactive", a.ID)
	}
	return nil
}
