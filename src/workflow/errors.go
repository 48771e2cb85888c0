package workflow

import (
	"errors"
	"fmt"

	"github.com/mosaicnetworks/waybill/src/access"
)

var (
	ErrUnknownNode       = access.ErrUnknownNode
	ErrEmptyFileName     = errors.New("file name is required")
	ErrEmptyFile         = errors.New("file is empty")
	ErrFileTooLarge      = errors.New("file exceeds the upload limit")
	ErrMissingReason     = errors.New("rejection reason is required")
	ErrInvalidDecision   = errors.New("decision must be approved or rejected")
	ErrNotApprover       = errors.New("node is not on the recipient's side")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrCapabilityMissing = errors.New("ledger capability missing")

	ErrRestricted         = errors.New("document content is restricted")
	ErrContentUnavailable = errors.New("document content is unavailable")
	ErrContentUnreadable  = errors.New("content store cannot read")
)

// ValidationError is returned when a request is refused before the ledger or
// the content store is touched.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// InvalidTransitionError is returned when resolving a document that is no
// longer pending.
type InvalidTransitionError struct {
	DocID string
	From  Status
	To    Status
}

func (e *InvalidTransitionError) Error() string {
	from := string(e.From)
	if from == "" {
		from = "resolved"
	}
	return fmt.Sprintf("%v: document %s is %s, cannot become %s", ErrInvalidTransition, e.DocID, from, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// LedgerError carries the context of a failed ledger call so that the caller
// can retry it.
type LedgerError struct {
	Op          string
	Transaction string
	Node        string
	Err         error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s: ledger %s (node %s): %v", e.Op, e.Transaction, e.Node, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}
