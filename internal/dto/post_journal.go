package dto

import (
	"fmt"
	"math/big"

	"github.com/victorotene80/sirara-core/internal/domain"
)

// PostJournalCommand is the inbound shape for posting a journal, validated
// at the boundary before anything touches the domain layer.
type PostJournalCommand struct {
	PublicID        string                   `json:"public_id" validate:"omitempty,uuid4"`
	ExternalRefType string                   `json:"external_ref_type" validate:"required,oneof=TRANSFER_INTENT MANUAL_ADJUSTMENT REVERSAL FEE SETTLEMENT"`
	ExternalRef     string                   `json:"external_ref" validate:"required,max=200"`
	Description     *string                  `json:"description,omitempty" validate:"omitempty,max=1000"`
	CreatedBy       string                   `json:"created_by" validate:"required"`
	Batch           bool                     `json:"batch"`
	Lines           []PostJournalLineCommand `json:"lines" validate:"required,min=1,dive"`
}

// PostJournalLineCommand is a single posting line. AmountMinor is a signed
// decimal string (not a JSON number) so large minor-unit values never pass
// through a float64.
type PostJournalLineCommand struct {
	AccountID   int64  `json:"account_id" validate:"required,gt=0"`
	AmountMinor string `json:"amount_minor" validate:"required,big_int_str"`
}

// ToDomainDraft maps a validated command into a domain.JournalDraft. Caller
// is expected to have already run the command through a validator so the
// struct-tag checks below are trusted; this method only does conversions
// the validator can't express (uuid parsing, ref type parsing, big.Int
// parsing).
func (c PostJournalCommand) ToDomainDraft() (*domain.JournalDraft, error) {
	publicID := domain.NewPublicID()
	if c.PublicID != "" {
		parsed, err := domain.ParsePublicID(c.PublicID)
		if err != nil {
			return nil, err
		}
		publicID = parsed
	}

	refType, err := domain.ParseExternalRefType(c.ExternalRefType)
	if err != nil {
		return nil, err
	}

	ref, err := domain.NewExternalRef(c.ExternalRef)
	if err != nil {
		return nil, err
	}

	draft, err := domain.NewJournalDraft(publicID, refType, ref, c.Description, c.CreatedBy)
	if err != nil {
		return nil, err
	}

	for i, line := range c.Lines {
		minor, ok := new(big.Int).SetString(line.AmountMinor, 10)
		if !ok {
			return nil, fmt.Errorf("line %d: amount_minor %q is not a valid integer", i, line.AmountMinor)
		}
		amount, err := domain.FromSignedMinor(minor)
		if err != nil {
			return nil, err
		}
		draft.AddLine(line.AccountID, amount)
	}

	return draft, nil
}
