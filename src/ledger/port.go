package ledger

import (
	"context"
	"errors"
	"fmt"
)

// Transaction names of the document contract.
const (
	SubmitDocument      = "SubmitDocument"
	ApproveDocument     = "ApproveDocument"
	RejectDocument      = "RejectDocument"
	GetDocumentByID     = "GetDocumentById"
	GetDocumentsForNode = "GetDocumentsForNode"
	GetMessagesForNode  = "GetMessagesForNode"
)

// Port is the contact surface between waybill and a ledger deployment.
type Port interface {
	// SubmitTransaction orders and commits a state-changing transaction.
	SubmitTransaction(ctx context.Context, name string, args ...string) ([]byte, error)

	// EvaluateTransaction runs a read-only query against the current state.
	EvaluateTransaction(ctx context.Context, name string, args ...string) ([]byte, error)
}

var (
	// ErrUnsupported is the capability negative-ack: the deployed contract
	// does not know the transaction.
	ErrUnsupported = errors.New("ledger: unsupported transaction")

	// ErrNotFound is returned when a document key is absent from the world
	// state.
	ErrNotFound = errors.New("ledger: document not found")

	// ErrAlreadyResolved is returned when a resolution targets a document that
	// is no longer pending.
	ErrAlreadyResolved = errors.New("ledger: document already resolved")

	// ErrNotApprover is returned when a resolution comes from outside the
	// recipient's faction.
	ErrNotApprover = errors.New("ledger: actor may not resolve document")

	// ErrAlreadyExists is returned when a submission reuses a document key.
	ErrAlreadyExists = errors.New("ledger: document already exists")

	// ErrInvalidArgument is returned for malformed transaction arguments.
	ErrInvalidArgument = errors.New("ledger: invalid argument")
)

// UnsupportedError names the transaction that was negatively acknowledged.
type UnsupportedError struct {
	Name string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupported, e.Name)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// IsUnsupported reports whether err is a capability negative-ack.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// IsRejection reports whether err is a definitive answer of the contract, as
// opposed to a connectivity or transient failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyResolved) ||
		errors.Is(err, ErrNotApprover) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrInvalidArgument)
}
