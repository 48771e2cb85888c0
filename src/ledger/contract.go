package ledger

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// FactionFunc resolves the faction of a node for the records' faction fields.
type FactionFunc func(node string) string

// Contract is the document contract evaluated by the LocalLedger. Submitted
// transactions are applied sequentially; the state hash is computed by
// cumulatively hashing every committed transaction, so two ledgers that
// applied the same transactions in the same order agree on it.
type Contract struct {
	store     Store
	faction   FactionFunc
	now       func() time.Time
	stateHash []byte
	committed int
	logger    *logrus.Entry
}

// NewContract creates a Contract over a Store. faction may be nil.
func NewContract(store Store, faction FactionFunc, logger *logrus.Entry) *Contract {
	if faction == nil {
		faction = func(string) string { return "" }
	}

	c := &Contract{
		store:     store,
		faction:   faction,
		now:       time.Now,
		stateHash: []byte{},
		logger:    logger,
	}

	logger.Debug("Init document contract")

	return c
}

// StateHash returns the hash of all committed transactions.
func (c *Contract) StateHash() []byte {
	return c.stateHash
}

// Committed returns the number of committed transactions.
func (c *Contract) Committed() int {
	return c.committed
}

// Close closes the underlying store.
func (c *Contract) Close() error {
	return c.store.Close()
}

// Submit applies a state-changing transaction.
func (c *Contract) Submit(name string, args []string) ([]byte, error) {
	var (
		record *Record
		err    error
	)

	switch name {
	case SubmitDocument:
		record, err = c.submitDocument(args)
	case ApproveDocument:
		record, err = c.resolveDocument(StatusApproved, args)
	case RejectDocument:
		record, err = c.resolveDocument(StatusRejected, args)
	case GetDocumentByID, GetDocumentsForNode, GetMessagesForNode:
		return c.Evaluate(name, args)
	default:
		return nil, &UnsupportedError{Name: name}
	}

	if err != nil {
		return nil, err
	}

	if err := c.store.PutRecord(record); err != nil {
		return nil, err
	}

	c.commit(name, args)

	return Encode(record)
}

// Evaluate runs a query. State-changing transactions cannot be evaluated.
func (c *Contract) Evaluate(name string, args []string) ([]byte, error) {
	switch name {
	case GetDocumentByID:
		return c.getDocumentByID(args)
	case GetDocumentsForNode:
		return c.getDocumentsForNode(args)
	case GetMessagesForNode:
		return c.getMessagesForNode(args)
	case SubmitDocument, ApproveDocument, RejectDocument:
		return nil, fmt.Errorf("%w: %s is not a query", ErrInvalidArgument, name)
	default:
		return nil, &UnsupportedError{Name: name}
	}
}

func (c *Contract) commit(name string, args []string) {
	tx, _ := Encode(struct {
		Name string   `json:"name"`
		Args []string `json:"args"`
	}{name, args})

	c.stateHash = chainHash(c.stateHash, tx)
	c.committed++

	c.logger.WithFields(logrus.Fields{
		"tx":         name,
		"committed":  c.committed,
		"state_hash": fmt.Sprintf("0X%X", c.stateHash),
	}).Debug("Commit")
}

// chainHash folds the digest of one encoded transaction into the state hash.
// The result depends on the order in which transactions are chained.
func chainHash(state, tx []byte) []byte {
	digest := sha256.Sum256(tx)

	h := sha256.New()
	h.Write(state)
	h.Write(digest[:])
	return h.Sum(nil)
}

// args: docID, fileName, sender, recipient, allowedViewers (JSON array),
// contentHash [, timestamp RFC3339]
func (c *Contract) submitDocument(args []string) (*Record, error) {
	if len(args) != 6 && len(args) != 7 {
		return nil, fmt.Errorf("%w: %s expects 6 or 7 arguments, got %d",
			ErrInvalidArgument, SubmitDocument, len(args))
	}

	docID := args[0]
	if docID == "" {
		return nil, fmt.Errorf("%w: empty document id", ErrInvalidArgument)
	}

	if _, err := c.store.GetRecord(docID); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, docID)
	}

	viewers := []string{}
	if strings.TrimSpace(args[4]) != "" {
		if err := Decode([]byte(args[4]), &viewers); err != nil {
			return nil, fmt.Errorf("%w: allowed viewers: %v", ErrInvalidArgument, err)
		}
	}

	timestamp := c.now().UTC().Format(time.RFC3339Nano)
	if len(args) == 7 && args[6] != "" {
		if _, err := time.Parse(time.RFC3339Nano, args[6]); err != nil {
			return nil, fmt.Errorf("%w: timestamp: %v", ErrInvalidArgument, err)
		}
		timestamp = args[6]
	}

	return &Record{
		DocID:            docID,
		FileName:         args[1],
		SenderNode:       args[2],
		RecipientNode:    args[3],
		AllowedViewers:   viewers,
		ContentHash:      args[5],
		Status:           StatusPending,
		Timestamp:        timestamp,
		SenderFaction:    c.faction(args[2]),
		RecipientFaction: c.faction(args[3]),
		Messages:         []NodeMessage{},
	}, nil
}

// args: docID, actor, message
func (c *Contract) resolveDocument(status string, args []string) (*Record, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("%w: expects 3 arguments, got %d", ErrInvalidArgument, len(args))
	}

	docID, actor, text := args[0], args[1], args[2]

	if status == StatusRejected && strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrInvalidArgument)
	}

	record, err := c.store.GetRecord(docID)
	if err != nil {
		return nil, err
	}

	if c.faction(actor) != record.RecipientFaction {
		return nil, fmt.Errorf("%w: %s is not on the side of %s",
			ErrNotApprover, actor, record.RecipientNode)
	}

	if record.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, docID, record.Status)
	}

	now := c.now().UTC().Format(time.RFC3339Nano)

	msg := NodeMessage{
		DocID:     docID,
		From:      actor,
		To:        record.SenderNode,
		Timestamp: now,
	}

	if status == StatusApproved {
		msg.Type = MessageApproval
		msg.Message = text
	} else {
		msg.Type = MessageRejection
		msg.Message = fmt.Sprintf("Document rejected: %s", text)
	}

	record.Status = status
	record.ResolutionMessage = text
	record.ResolvedBy = actor
	record.ResolvedAt = now
	record.Messages = append(record.Messages, msg)

	return record, nil
}

// args: docID, requestingNode
func (c *Contract) getDocumentByID(args []string) ([]byte, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%w: %s expects 2 arguments, got %d",
			ErrInvalidArgument, GetDocumentByID, len(args))
	}

	record, err := c.store.GetRecord(args[0])
	if err != nil {
		return nil, err
	}

	return Encode(viewOf(record, args[1]))
}

// args: nodeID
func (c *Contract) getDocumentsForNode(args []string) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s expects 1 argument, got %d",
			ErrInvalidArgument, GetDocumentsForNode, len(args))
	}

	node := args[0]

	records, err := c.store.Records()
	if err != nil {
		return nil, err
	}

	res := []*Record{}
	for _, r := range records {
		if canView(r, node) {
			res = append(res, viewOf(r, node))
		}
	}

	return Encode(res)
}

// args: nodeID
func (c *Contract) getMessagesForNode(args []string) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s expects 1 argument, got %d",
			ErrInvalidArgument, GetMessagesForNode, len(args))
	}

	records, err := c.store.Records()
	if err != nil {
		return nil, err
	}

	res := []NodeMessage{}
	for _, r := range records {
		for _, m := range r.Messages {
			if m.To == args[0] {
				res = append(res, m)
			}
		}
	}

	return Encode(res)
}

func canView(r *Record, node string) bool {
	if node == r.SenderNode || node == r.RecipientNode {
		return true
	}
	for _, v := range r.AllowedViewers {
		if v == node {
			return true
		}
	}
	return false
}

// viewOf returns the record as seen by node: outsiders get every field but
// the content hash, and no message history.
func viewOf(r *Record, node string) *Record {
	if canView(r, node) {
		return r
	}

	cp := r.Clone()
	cp.ContentHash = RestrictedHash
	cp.Messages = nil

	return cp
}
