// Package access enforces the faction-scoped visibility rules of the network.
package access

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mosaicnetworks/waybill/src/registry"
)

var (
	// ErrUnknownNode is returned when a node ID does not resolve in the
	// registry.
	ErrUnknownNode = errors.New("unknown node")

	// ErrForeignViewer is wrapped by RejectedViewersError.
	ErrForeignViewer = errors.New("allowed viewers must be from the same faction")
)

// RejectedViewersError lists every proposed viewer that failed validation.
// The whole request is rejected; nothing is partially accepted.
type RejectedViewersError struct {
	Invalid       []string
	SenderFaction registry.Faction
}

func (e *RejectedViewersError) Error() string {
	return fmt.Sprintf("%s: sender faction %s, invalid viewers [%s]",
		ErrForeignViewer, e.SenderFaction, strings.Join(e.Invalid, ", "))
}

func (e *RejectedViewersError) Unwrap() error {
	return ErrForeignViewer
}

// Validator checks proposed viewer lists against the registry.
type Validator struct {
	registry *registry.Registry
}

// NewValidator returns a Validator bound to a registry.
func NewValidator(r *registry.Registry) *Validator {
	return &Validator{registry: r}
}

// ValidateViewers accepts the proposed viewers iff every entry is a known node
// of the sender's faction. Duplicates are collapsed, keeping the order of
// first occurrence. An empty proposal is valid and yields an empty set.
func (v *Validator) ValidateViewers(sender string, proposed []string) ([]string, error) {
	senderNode, ok := v.registry.Get(sender)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, sender)
	}

	accepted := make([]string, 0, len(proposed))
	seen := make(map[string]struct{}, len(proposed))
	invalid := []string{}

	for _, id := range proposed {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		n, ok := v.registry.Get(id)
		if !ok || !senderNode.SameFaction(n) {
			invalid = append(invalid, id)
			continue
		}
		accepted = append(accepted, id)
	}

	if len(invalid) > 0 {
		return nil, &RejectedViewersError{
			Invalid:       invalid,
			SenderFaction: senderNode.Faction,
		}
	}

	return accepted, nil
}

// CanView reports whether viewer is the sender, the recipient or one of the
// allowed viewers of a document. It is a membership test only; the state of
// the document plays no part in it.
func CanView(sender, recipient string, allowedViewers []string, viewer string) bool {
	if viewer == "" {
		return false
	}
	if viewer == sender || viewer == recipient {
		return true
	}
	for _, v := range allowedViewers {
		if v == viewer {
			return true
		}
	}
	return false
}
