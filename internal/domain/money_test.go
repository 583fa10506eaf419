package domain_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/victorotene80/sirara-core/internal/apperrors"
	"github.com/victorotene80/sirara-core/internal/domain"
)

func TestDebit_RejectsNonPositive(t *testing.T) {
	_, err := domain.Debit(big.NewInt(0))
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindInvalidDebitAmount))

	_, err = domain.Debit(big.NewInt(-5))
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindInvalidDebitAmount))
}

func TestDebit_StoresPositive(t *testing.T) {
	m, err := domain.Debit(big.NewInt(100))
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(100), m.Minor())
}

func TestCredit_StoresNegative(t *testing.T) {
	m, err := domain.Credit(big.NewInt(100))
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(-100), m.Minor())
}

func TestCredit_RejectsNonPositive(t *testing.T) {
	_, err := domain.Credit(big.NewInt(0))
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindInvalidCreditAmount))
}

func TestFromSignedMinor_RejectsZero(t *testing.T) {
	_, err := domain.FromSignedMinor(big.NewInt(0))
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindMoneyZeroNotAllowed))
}

func TestFromSignedMinor_RejectsOutOfRange(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 127) // 2^127, one past max
	_, err := domain.FromSignedMinor(tooBig)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindMoneyOverflow))

	tooSmall := new(big.Int).Neg(new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)))
	_, err = domain.FromSignedMinor(tooSmall)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindMoneyOverflow))
}

func TestFromSignedMinor_AcceptsBoundaryValues(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	_, err := domain.FromSignedMinor(max)
	assert.NoError(t, err)

	min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	_, err = domain.FromSignedMinor(min)
	assert.NoError(t, err)
}

func TestAddChecked_OverflowIsIntegrityError(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	_, err := domain.AddChecked(max, big.NewInt(1))
	assert.True(t, apperrors.IsRepoKind(err, apperrors.RepoIntegrity))
}

func TestMoney_IsZero(t *testing.T) {
	var m domain.Money
	assert.True(t, m.IsZero())

	nonZero, err := domain.Debit(big.NewInt(1))
	assert.NoError(t, err)
	assert.False(t, nonZero.IsZero())
}
