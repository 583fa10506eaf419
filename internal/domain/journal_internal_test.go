package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/victorotene80/sirara-core/internal/apperrors"
)

// TestEnsureCompressedLineCount_RejectsSingleLine exercises the
// defense-in-depth check directly: ValidateWithAccounts' own balance
// check makes a single nonzero post-compression line unreachable
// through the public API, so this constructs the post-compression
// slice by hand the way compressLines would if that invariant were
// ever violated upstream.
func TestEnsureCompressedLineCount_RejectsSingleLine(t *testing.T) {
	amount, err := Debit(big.NewInt(100))
	assert.NoError(t, err)

	compressed := []JournalLineDraft{{AccountID: 1, Amount: amount}}
	err = ensureCompressedLineCount(compressed)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindJournalTooFewLines))
}

func TestEnsureCompressedLineCount_RejectsEmpty(t *testing.T) {
	err := ensureCompressedLineCount(nil)
	assert.True(t, apperrors.IsDomainKind(err, apperrors.KindJournalEmpty))
}

func TestEnsureCompressedLineCount_AcceptsTwoOrMore(t *testing.T) {
	debit, err := Debit(big.NewInt(100))
	assert.NoError(t, err)
	credit, err := Credit(big.NewInt(100))
	assert.NoError(t, err)

	compressed := []JournalLineDraft{{AccountID: 1, Amount: debit}, {AccountID: 2, Amount: credit}}
	assert.NoError(t, ensureCompressedLineCount(compressed))
}
