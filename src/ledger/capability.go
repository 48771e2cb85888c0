package ledger

import (
	"context"
)

// Outcome classifies the answer of a ledger call.
type Outcome int

const (
	// Supported means the transaction ran and Payload holds its result.
	Supported Outcome = iota
	// Unsupported means the deployed contract does not know the transaction.
	Unsupported
	// Rejected means the contract ran and refused the transaction (not found,
	// already resolved, bad arguments).
	Rejected
	// TransientFailure covers connectivity, timeouts and any other failure.
	TransientFailure
)

func (o Outcome) String() string {
	switch o {
	case Supported:
		return "Supported"
	case Unsupported:
		return "Unsupported"
	case Rejected:
		return "Rejected"
	case TransientFailure:
		return "TransientFailure"
	default:
		return "Unknown"
	}
}

// Result is the outcome of a ledger call together with its payload or error.
type Result struct {
	Outcome Outcome
	Payload []byte
	Err     error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Outcome == Supported
}

// Submit runs a submit-transaction call and classifies its outcome.
func Submit(ctx context.Context, p Port, name string, args ...string) Result {
	payload, err := p.SubmitTransaction(ctx, name, args...)
	return classify(payload, err)
}

// Evaluate runs an evaluate-transaction call and classifies its outcome.
func Evaluate(ctx context.Context, p Port, name string, args ...string) Result {
	payload, err := p.EvaluateTransaction(ctx, name, args...)
	return classify(payload, err)
}

func classify(payload []byte, err error) Result {
	switch {
	case err == nil:
		return Result{Outcome: Supported, Payload: payload}
	case IsUnsupported(err):
		return Result{Outcome: Unsupported, Err: err}
	case IsRejection(err):
		return Result{Outcome: Rejected, Err: err}
	default:
		return Result{Outcome: TransientFailure, Err: err}
	}
}
