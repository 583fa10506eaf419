package domain

import (
	"strings"

	"github.com/victorotene80/sirara-core/internal/apperrors"
)

// ExternalRef is the caller-supplied idempotency key for a posting,
// unique together with its ExternalRefType.
type ExternalRef string

// NewExternalRef trims the input, rejecting empty or overlong values.
func NewExternalRef(raw string) (ExternalRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperrors.NewDomainError(apperrors.KindExternalRefEmpty, "external ref cannot be empty")
	}
	if len(trimmed) > 200 {
		return "", apperrors.NewDomainError(apperrors.KindExternalRefTooLong,
			"external ref exceeds 200 characters, got %d", len(trimmed))
	}
	return ExternalRef(trimmed), nil
}

func (r ExternalRef) String() string { return string(r) }

// ExternalRefType classifies the caller-supplied reason for a posting.
type ExternalRefType string

const (
	ExternalRefTransferIntent   ExternalRefType = "TRANSFER_INTENT"
	ExternalRefManualAdjustment ExternalRefType = "MANUAL_ADJUSTMENT"
	ExternalRefReversal         ExternalRefType = "REVERSAL"
	ExternalRefFee              ExternalRefType = "FEE"
	ExternalRefSettlement       ExternalRefType = "SETTLEMENT"
)

// ParseExternalRefType validates a wire/DB code against the known set
// of external ref types.
func ParseExternalRefType(code string) (ExternalRefType, error) {
	switch ExternalRefType(code) {
	case ExternalRefTransferIntent, ExternalRefManualAdjustment, ExternalRefReversal,
		ExternalRefFee, ExternalRefSettlement:
		return ExternalRefType(code), nil
	default:
		return "", apperrors.NewDomainError(apperrors.KindInvalidExternalRefType,
			"invalid external ref type %q", code)
	}
}
