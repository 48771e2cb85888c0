package ledger

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

// Document states as recorded in the world state.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Message types recorded by resolutions.
const (
	MessageApproval  = "approval"
	MessageRejection = "rejection"
)

// RestrictedHash replaces the content hash of a record for requesters that
// are not allowed to see it.
const RestrictedHash = "RESTRICTED"

// Record is the world-state value of a document.
type Record struct {
	DocID             string        `json:"docID"`
	FileName          string        `json:"fileName"`
	SenderNode        string        `json:"senderNode"`
	RecipientNode     string        `json:"recipientNode"`
	AllowedViewers    []string      `json:"allowedViewers"`
	ContentHash       string        `json:"contentHash"`
	Status            string        `json:"status"`
	ResolutionMessage string        `json:"resolutionMessage,omitempty"`
	ResolvedBy        string        `json:"resolvedBy,omitempty"`
	ResolvedAt        string        `json:"resolvedAt,omitempty"`
	Timestamp         string        `json:"timestamp"`
	SenderFaction     string        `json:"senderFaction,omitempty"`
	RecipientFaction  string        `json:"recipientFaction,omitempty"`
	Messages          []NodeMessage `json:"messages,omitempty"`
}

// NodeMessage is a notification recorded on the ledger when a document is
// resolved. It is addressed to the sender of the document.
type NodeMessage struct {
	DocID     string `json:"docID"`
	From      string `json:"from"`
	To        string `json:"to"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	cp := *r
	if r.AllowedViewers != nil {
		cp.AllowedViewers = append([]string{}, r.AllowedViewers...)
	}
	if r.Messages != nil {
		cp.Messages = append([]NodeMessage{}, r.Messages...)
	}
	return &cp
}

// Encode marshals v with the JSON handle of the ugorji codec. It is the wire
// and storage format of every ledger payload.
func Encode(v interface{}) ([]byte, error) {
	var b bytes.Buffer

	jh := new(codec.JsonHandle)
	jh.Canonical = true

	enc := codec.NewEncoder(&b, jh)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Decode unmarshals a payload produced by Encode, or by any JSON encoder.
func Decode(data []byte, v interface{}) error {
	jh := new(codec.JsonHandle)

	dec := codec.NewDecoderBytes(data, jh)

	return dec.Decode(v)
}
