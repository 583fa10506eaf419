// Package apperrors defines the error taxonomy surfaced by the ledger core:
// domain invariant violations and repository protocol outcomes.
package apperrors

import "fmt"

// DomainKind enumerates the distinct domain invariant violations the
// journal aggregate and posting policy service can raise.
type DomainKind string

const (
	KindAssetCodeInvalidLength   DomainKind = "ASSET_CODE_INVALID_LENGTH"
	KindAssetCodeNotUppercase    DomainKind = "ASSET_CODE_NOT_UPPERCASE"
	KindInvalidDebitAmount       DomainKind = "INVALID_DEBIT_AMOUNT"
	KindInvalidCreditAmount      DomainKind = "INVALID_CREDIT_AMOUNT"
	KindMoneyZeroNotAllowed      DomainKind = "MONEY_ZERO_NOT_ALLOWED"
	KindMoneyOverflow            DomainKind = "MONEY_OVERFLOW"
	KindExternalRefEmpty         DomainKind = "EXTERNAL_REF_EMPTY"
	KindExternalRefTooLong       DomainKind = "EXTERNAL_REF_TOO_LONG"
	KindInvalidExternalRefType   DomainKind = "INVALID_EXTERNAL_REF_TYPE"
	KindLedgerAccountInactive    DomainKind = "LEDGER_ACCOUNT_INACTIVE"
	KindLedgerAccountNotFound    DomainKind = "LEDGER_ACCOUNT_NOT_FOUND"
	KindCreatedByEmpty           DomainKind = "CREATED_BY_EMPTY"
	KindJournalEmpty             DomainKind = "JOURNAL_EMPTY"
	KindJournalNotBalanced       DomainKind = "JOURNAL_NOT_BALANCED"
	KindJournalLineAmountZero    DomainKind = "JOURNAL_LINE_AMOUNT_ZERO"
	KindJournalTooFewLines       DomainKind = "JOURNAL_TOO_FEW_LINES"
	KindJournalTooManyLines      DomainKind = "JOURNAL_TOO_MANY_LINES"
	KindCrossAssetPosting        DomainKind = "CROSS_ASSET_POSTING_NOT_ALLOWED"
	KindAccountOwnerTypeMismatch DomainKind = "ACCOUNT_OWNER_TYPE_MISMATCH"
	KindOwnerIDRequired          DomainKind = "OWNER_ID_REQUIRED_FOR_USER_ACCOUNT"
	KindHoldPostingAmbiguous     DomainKind = "HOLD_POSTING_AMBIGUOUS"
	KindHoldMustBeSameUser       DomainKind = "HOLD_MUST_BE_SAME_USER"
	KindAmountCapExceeded        DomainKind = "AMOUNT_CAP_EXCEEDED"
)

// DomainError represents a violation of a journal/account/money invariant.
// Domain errors are never retried by a caller; they short-circuit before
// any write is attempted.
type DomainError struct {
	Kind    DomainKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError, formatting Message like fmt.Sprintf.
func NewDomainError(kind DomainKind, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsDomainKind reports whether err is a *DomainError of the given kind.
func IsDomainKind(err error, kind DomainKind) bool {
	de, ok := err.(*DomainError)
	return ok && de.Kind == kind
}

// RepoKind enumerates the repository-layer outcomes callers need to
// distinguish: not found, conflict, integrity, transient, unexpected.
type RepoKind string

const (
	RepoNotFound   RepoKind = "NOT_FOUND"
	RepoConflict   RepoKind = "CONFLICT"
	RepoIntegrity  RepoKind = "INTEGRITY"
	RepoTransient  RepoKind = "TRANSIENT"
	RepoUnexpected RepoKind = "UNEXPECTED"
)

// RepoError represents a persistence-protocol outcome. Integrity and
// Unexpected indicate a bug or corruption and are never retried;
// Transient is safe for the caller to retry with backoff; Conflict and
// NotFound are surfaced as-is.
type RepoError struct {
	Kind    RepoKind
	Message string
	Cause   error
}

func (e *RepoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RepoError) Unwrap() error { return e.Cause }

func newRepoError(kind RepoKind, cause error, format string, args ...interface{}) *RepoError {
	return &RepoError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewNotFoundError builds a Repo:NotFound error.
func NewNotFoundError(format string, args ...interface{}) *RepoError {
	return newRepoError(RepoNotFound, nil, format, args...)
}

// NewConflictError builds a Repo:Conflict error.
func NewConflictError(format string, args ...interface{}) *RepoError {
	return newRepoError(RepoConflict, nil, format, args...)
}

// NewIntegrityError builds a Repo:Integrity error.
func NewIntegrityError(format string, args ...interface{}) *RepoError {
	return newRepoError(RepoIntegrity, nil, format, args...)
}

// NewTransientError builds a Repo:Transient error, wrapping the cause so
// callers can still errors.Is/As against the underlying driver error.
func NewTransientError(cause error, format string, args ...interface{}) *RepoError {
	return newRepoError(RepoTransient, cause, format, args...)
}

// NewUnexpectedError builds a Repo:Unexpected error.
func NewUnexpectedError(cause error, format string, args ...interface{}) *RepoError {
	return newRepoError(RepoUnexpected, cause, format, args...)
}

// IsRepoKind reports whether err is a *RepoError of the given kind.
func IsRepoKind(err error, kind RepoKind) bool {
	re, ok := err.(*RepoError)
	return ok && re.Kind == kind
}

// Retryable reports whether a caller should retry the operation that
// produced err with backoff (Repo:Transient only).
func Retryable(err error) bool {
	return IsRepoKind(err, RepoTransient)
}
