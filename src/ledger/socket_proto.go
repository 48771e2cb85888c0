package ledger

import (
	"errors"
)

// Request is the JSON-RPC argument of the Ledger.Submit and Ledger.Evaluate
// methods.
type Request struct {
	Name string
	Args []string
}

// Response carries either a payload or a coded error. Contract errors travel
// as codes so that the client can map them back to the package sentinels.
type Response struct {
	Payload []byte
	Code    string
	Message string
}

const (
	codeUnsupported     = "unsupported"
	codeNotFound        = "not_found"
	codeAlreadyResolved = "already_resolved"
	codeNotApprover     = "not_approver"
	codeAlreadyExists   = "already_exists"
	codeInvalidArgument = "invalid_argument"
	codeError           = "error"
)

var codeSentinels = map[string]error{
	codeUnsupported:     ErrUnsupported,
	codeNotFound:        ErrNotFound,
	codeAlreadyResolved: ErrAlreadyResolved,
	codeNotApprover:     ErrNotApprover,
	codeAlreadyExists:   ErrAlreadyExists,
	codeInvalidArgument: ErrInvalidArgument,
}

// RemoteError is an error returned by a ledger on the other end of a socket.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return codeSentinels[e.Code]
}

func encodeError(err error) (string, string) {
	switch {
	case errors.Is(err, ErrUnsupported):
		return codeUnsupported, err.Error()
	case errors.Is(err, ErrNotFound):
		return codeNotFound, err.Error()
	case errors.Is(err, ErrAlreadyResolved):
		return codeAlreadyResolved, err.Error()
	case errors.Is(err, ErrNotApprover):
		return codeNotApprover, err.Error()
	case errors.Is(err, ErrAlreadyExists):
		return codeAlreadyExists, err.Error()
	case errors.Is(err, ErrInvalidArgument):
		return codeInvalidArgument, err.Error()
	default:
		return codeError, err.Error()
	}
}

func decodeError(name, code, message string) error {
	if code == codeUnsupported {
		return &UnsupportedError{Name: name}
	}
	return &RemoteError{Code: code, Message: message}
}
