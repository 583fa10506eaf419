package domain

import (
	"math/big"

	"github.com/victorotene80/sirara-core/internal/apperrors"
)

// minMinor and maxMinor bound Money the way Rust's i128 does. Go has no
// native 128-bit integer, so Money is backed by math/big.Int with
// explicit range checks on every constructor and arithmetic operation.
var (
	minMinor = func() *big.Int {
		v := new(big.Int).Lsh(big.NewInt(1), 127)
		return v.Neg(v)
	}()
	maxMinor = func() *big.Int {
		v := new(big.Int).Lsh(big.NewInt(1), 127)
		return v.Sub(v, big.NewInt(1))
	}()
)

// Money is a signed ledger amount in an asset's minor unit. Debits are
// stored positive, credits negative; zero is never a valid Money value.
type Money struct {
	minor *big.Int
}

func inRange(v *big.Int) bool {
	return v.Cmp(minMinor) >= 0 && v.Cmp(maxMinor) <= 0
}

// Debit builds a positive Money from a strictly positive minor amount.
func Debit(minor *big.Int) (Money, error) {
	if minor.Sign() <= 0 {
		return Money{}, apperrors.NewDomainError(apperrors.KindInvalidDebitAmount,
			"debit amount must be positive, got %s", minor.String())
	}
	if !inRange(minor) {
		return Money{}, apperrors.NewDomainError(apperrors.KindMoneyOverflow,
			"debit amount %s out of range", minor.String())
	}
	return Money{minor: new(big.Int).Set(minor)}, nil
}

// Credit builds a negative Money from a strictly positive minor amount.
func Credit(minor *big.Int) (Money, error) {
	if minor.Sign() <= 0 {
		return Money{}, apperrors.NewDomainError(apperrors.KindInvalidCreditAmount,
			"credit amount must be positive, got %s", minor.String())
	}
	if !inRange(minor) {
		return Money{}, apperrors.NewDomainError(apperrors.KindMoneyOverflow,
			"credit amount %s out of range", minor.String())
	}
	return Money{minor: new(big.Int).Neg(minor)}, nil
}

// FromSignedMinor builds a Money directly from a signed minor amount.
// Zero is rejected: every journal line must move money one way or the
// other.
func FromSignedMinor(minor *big.Int) (Money, error) {
	if minor.Sign() == 0 {
		return Money{}, apperrors.NewDomainError(apperrors.KindMoneyZeroNotAllowed,
			"money amount cannot be zero")
	}
	if !inRange(minor) {
		return Money{}, apperrors.NewDomainError(apperrors.KindMoneyOverflow,
			"money amount %s out of range", minor.String())
	}
	return Money{minor: new(big.Int).Set(minor)}, nil
}

// Minor returns the signed minor-unit amount.
func (m Money) Minor() *big.Int {
	return new(big.Int).Set(m.minor)
}

// IsZero reports whether m is the zero value (never true for a
// constructed Money, but true for an unset Money{}).
func (m Money) IsZero() bool {
	return m.minor == nil || m.minor.Sign() == 0
}

// AddChecked adds two Money minor amounts, returning a Repo:Integrity
// error on overflow rather than wrapping silently.
func AddChecked(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if !inRange(sum) {
		return nil, apperrors.NewIntegrityError("delta overflow: %s + %s", a.String(), b.String())
	}
	return sum, nil
}
