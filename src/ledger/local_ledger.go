package ledger

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// LocalLedger implements the Port interface natively, by running a Contract
// in-process. Transactions are serialized, standing in for the ordering a
// real ledger provides.
type LocalLedger struct {
	sync.Mutex

	contract    *Contract
	unsupported map[string]bool
	logger      *logrus.Entry
}

// Option configures a LocalLedger.
type Option func(*LocalLedger)

// WithUnsupported makes the ledger negatively acknowledge the given
// transaction names, as a deployment of an older contract version would.
func WithUnsupported(names ...string) Option {
	return func(l *LocalLedger) {
		for _, n := range names {
			l.unsupported[n] = true
		}
	}
}

// NewLocalLedger instantiates a LocalLedger around a Contract.
func NewLocalLedger(contract *Contract, logger *logrus.Entry, opts ...Option) *LocalLedger {
	l := &LocalLedger{
		contract:    contract,
		unsupported: make(map[string]bool),
		logger:      logger,
	}

	for _, o := range opts {
		o(l)
	}

	return l
}

// SubmitTransaction implements the Port interface.
func (l *LocalLedger) SubmitTransaction(ctx context.Context, name string, args ...string) ([]byte, error) {
	return l.run(ctx, name, args, l.contract.Submit)
}

// EvaluateTransaction implements the Port interface.
func (l *LocalLedger) EvaluateTransaction(ctx context.Context, name string, args ...string) ([]byte, error) {
	return l.run(ctx, name, args, l.contract.Evaluate)
}

func (l *LocalLedger) run(ctx context.Context,
	name string,
	args []string,
	fn func(string, []string) ([]byte, error)) ([]byte, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if l.unsupported[name] {
		return nil, &UnsupportedError{Name: name}
	}

	l.Lock()
	defer l.Unlock()

	payload, err := fn(name, args)

	l.logger.WithFields(logrus.Fields{
		"tx":  name,
		"err": err,
	}).Debug("LocalLedger")

	return payload, err
}

// StateHash returns the state hash of the underlying contract.
func (l *LocalLedger) StateHash() []byte {
	l.Lock()
	defer l.Unlock()

	return l.contract.StateHash()
}

// Close releases the underlying store.
func (l *LocalLedger) Close() error {
	l.Lock()
	defer l.Unlock()

	return l.contract.Close()
}
