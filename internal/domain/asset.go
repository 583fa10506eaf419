package domain

import (
	"strings"

	"github.com/victorotene80/sirara-core/internal/apperrors"
)

// AssetCode is a short uppercase identifier for a postable asset (e.g.
// "USD", "BTC", "POINTS").
type AssetCode string

// NewAssetCode trims the input and validates it is 2-10 uppercase
// characters.
func NewAssetCode(raw string) (AssetCode, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < 2 || len(trimmed) > 10 {
		return "", apperrors.NewDomainError(apperrors.KindAssetCodeInvalidLength,
			"asset code must be 2-10 characters, got %d", len(trimmed))
	}
	if trimmed != strings.ToUpper(trimmed) {
		return "", apperrors.NewDomainError(apperrors.KindAssetCodeNotUppercase,
			"asset code %q must be uppercase", trimmed)
	}
	return AssetCode(trimmed), nil
}

func (c AssetCode) String() string { return string(c) }

// Asset is a postable unit of value: a currency, a token, a loyalty
// point balance.
type Asset struct {
	ID       int16
	Code     AssetCode
	Decimals int16
	IsActive bool
}

// NewAsset constructs an Asset from already-validated fields.
func NewAsset(id int16, code AssetCode, decimals int16, isActive bool) Asset {
	return Asset{ID: id, Code: code, Decimals: decimals, IsActive: isActive}
}
