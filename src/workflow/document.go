package workflow

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mosaicnetworks/waybill/src/access"
	"github.com/mosaicnetworks/waybill/src/ledger"
)

// Status is the lifecycle state of a Document.
type Status string

const (
	Pending  Status = ledger.StatusPending
	Approved Status = ledger.StatusApproved
	Rejected Status = ledger.StatusRejected
)

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == Approved || s == Rejected
}

// Document is a file exchanged between two nodes, as recorded on the ledger.
type Document struct {
	DocID             string     `json:"docId"`
	FileName          string     `json:"fileName"`
	SenderNode        string     `json:"senderNode"`
	RecipientNode     string     `json:"recipientNode"`
	AllowedViewers    []string   `json:"allowedViewers"`
	Status            Status     `json:"status"`
	ContentHash       string     `json:"contentHash"`
	CreatedAt         time.Time  `json:"timestamp"`
	ResolutionMessage string     `json:"resolutionMessage,omitempty"`
	ResolvedBy        string     `json:"resolvedBy,omitempty"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
	SenderFaction     string     `json:"senderFaction,omitempty"`
	RecipientFaction  string     `json:"recipientFaction,omitempty"`
	Placeholder       bool       `json:"placeholder,omitempty"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	cp := *d
	cp.AllowedViewers = append([]string{}, d.AllowedViewers...)
	if d.ResolvedAt != nil {
		t := *d.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}

// CanView reports whether viewer may see the content hash of the document.
func (d *Document) CanView(viewer string) bool {
	return access.CanView(d.SenderNode, d.RecipientNode, d.AllowedViewers, viewer)
}

// Restricted reports whether the content hash has been redacted.
func (d *Document) Restricted() bool {
	return d.ContentHash == ledger.RestrictedHash
}

// Redact returns the document as seen by viewer. Viewers outside the
// participants and allowed viewers get the RESTRICTED marker instead of the
// content hash; every other field is kept.
func Redact(d *Document, viewer string) *Document {
	cp := d.Clone()
	if !d.CanView(viewer) {
		cp.ContentHash = ledger.RestrictedHash
	}
	return cp
}

// Transition returns the state reached by applying decision to from.
func Transition(from Status, decision Status) (Status, error) {
	if decision != Approved && decision != Rejected {
		return from, &ValidationError{
			Field: "decision",
			Err:   fmt.Errorf("%w: %q", ErrInvalidDecision, decision),
		}
	}
	if from != Pending {
		return from, &InvalidTransitionError{From: from, To: decision}
	}
	return decision, nil
}

// NewDocID returns 32 lowercase hex characters from 16 random bytes.
func NewDocID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func fromRecord(r *ledger.Record) (*Document, error) {
	d := &Document{
		DocID:             r.DocID,
		FileName:          r.FileName,
		SenderNode:        r.SenderNode,
		RecipientNode:     r.RecipientNode,
		AllowedViewers:    append([]string{}, r.AllowedViewers...),
		Status:            Status(r.Status),
		ContentHash:       r.ContentHash,
		ResolutionMessage: r.ResolutionMessage,
		ResolvedBy:        r.ResolvedBy,
		SenderFaction:     r.SenderFaction,
		RecipientFaction:  r.RecipientFaction,
	}

	if r.Timestamp != "" {
		t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("document %s: timestamp: %v", r.DocID, err)
		}
		d.CreatedAt = t
	}

	if r.ResolvedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, r.ResolvedAt)
		if err != nil {
			return nil, fmt.Errorf("document %s: resolvedAt: %v", r.DocID, err)
		}
		d.ResolvedAt = &t
	}

	return d, nil
}

func decodeDocument(payload []byte) (*Document, error) {
	var r ledger.Record
	if err := ledger.Decode(payload, &r); err != nil {
		return nil, err
	}
	return fromRecord(&r)
}

func decodeDocuments(payload []byte) ([]*Document, error) {
	var records []*ledger.Record
	if err := ledger.Decode(payload, &records); err != nil {
		return nil, err
	}

	docs := make([]*Document, 0, len(records))
	for _, r := range records {
		d, err := fromRecord(r)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}

	return docs, nil
}
