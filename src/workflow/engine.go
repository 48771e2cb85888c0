// Package workflow implements the document lifecycle: submission, resolution,
// redacted views and per-node listings, on top of a ledger.Port and a
// content.Store.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mosaicnetworks/waybill/src/access"
	"github.com/mosaicnetworks/waybill/src/content"
	"github.com/mosaicnetworks/waybill/src/ledger"
	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/sirupsen/logrus"
)

// DefaultMaxUploadSize is the upload ceiling of the reference deployment.
const DefaultMaxUploadSize int64 = 25 << 20

// Placeholder values returned when the ledger cannot list documents.
const (
	PlaceholderFileName = "sample-document.pdf"
	PlaceholderHash     = "mock-hash"
)

// SubmitRequest is the input of Submit.
type SubmitRequest struct {
	Sender    string
	Recipient string
	FileName  string
	Content   []byte
	Viewers   []string
}

// SubmitResult is the document as created. ContentErr is set when the payload
// could not be stored; the document then carries content.UnavailableHash.
type SubmitResult struct {
	Document   *Document
	ContentErr error
}

// ContentUnavailable reports whether the payload of the document is not
// retrievable.
func (r *SubmitResult) ContentUnavailable() bool {
	return r.ContentErr != nil
}

// ResolveRequest is the input of Resolve.
type ResolveRequest struct {
	DocID    string
	Actor    string
	Decision Status
	Message  string
}

// ResolveResult is the outcome of Resolve. Recorded is false when the ledger
// does not support the resolution transaction: the caller is told the
// decision was accepted but nothing was persisted. Verified is false when the
// current state could not be read before submitting; the pending state and
// the actor's side are then checked by the ledger alone. A ledger supporting
// neither the read nor the resolution yields ErrCapabilityMissing, never a
// result.
type ResolveResult struct {
	Document *Document
	Recorded bool
	Verified bool
}

// ContentResult is a document together with its payload.
type ContentResult struct {
	Document *Document
	Data     []byte
}

// ViewResult is a document redacted for a viewer.
type ViewResult struct {
	Document   *Document
	FullAccess bool
}

// ListResult is the list of documents of a node. Placeholder is set when the
// ledger cannot list documents and Documents holds sample data.
type ListResult struct {
	Node        string
	Documents   []*Document
	Placeholder bool
}

// Engine runs the document workflow. It keeps no document state of its own;
// the ledger is the source of truth.
type Engine struct {
	registry      *registry.Registry
	validator     *access.Validator
	ledger        ledger.Port
	store         content.Store
	maxUploadSize int64
	now           func() time.Time
	logger        *logrus.Entry
}

// NewEngine creates an Engine. A non-positive maxUploadSize selects
// DefaultMaxUploadSize.
func NewEngine(reg *registry.Registry,
	validator *access.Validator,
	port ledger.Port,
	store content.Store,
	maxUploadSize int64,
	logger *logrus.Entry) *Engine {

	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}

	return &Engine{
		registry:      reg,
		validator:     validator,
		ledger:        port,
		store:         store,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
		logger:        logger,
	}
}

// Registry returns the node registry of the engine.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// MaxUploadSize returns the upload ceiling in bytes.
func (e *Engine) MaxUploadSize() int64 {
	return e.maxUploadSize
}

// Submit validates and records a new document. The payload goes to the content
// store first; a store failure does not abort the submission.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if err := e.checkNode("sender", req.Sender); err != nil {
		return nil, err
	}
	if err := e.checkNode("recipient", req.Recipient); err != nil {
		return nil, err
	}

	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		return nil, &ValidationError{Field: "fileName", Err: ErrEmptyFileName}
	}
	if len(req.Content) == 0 {
		return nil, &ValidationError{Field: "file", Err: ErrEmptyFile}
	}
	if int64(len(req.Content)) > e.maxUploadSize {
		return nil, &ValidationError{
			Field: "file",
			Err:   fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, len(req.Content), e.maxUploadSize),
		}
	}

	viewers, err := e.validator.ValidateViewers(req.Sender, req.Viewers)
	if err != nil {
		return nil, &ValidationError{Field: "allowedViewers", Err: err}
	}

	docID, err := NewDocID()
	if err != nil {
		return nil, err
	}

	res := &SubmitResult{}

	hash, err := e.store.Put(ctx, req.Content)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"doc_id": docID,
			"file":   fileName,
			"error":  err,
		}).Warn("Content store unavailable, recording document without payload")

		hash = content.UnavailableHash
		res.ContentErr = err
	}

	viewersJSON, err := ledger.Encode(viewers)
	if err != nil {
		return nil, err
	}

	createdAt := e.now().UTC()

	r := ledger.Submit(ctx, e.ledger, ledger.SubmitDocument,
		docID,
		fileName,
		req.Sender,
		req.Recipient,
		string(viewersJSON),
		hash,
		createdAt.Format(time.RFC3339Nano),
	)
	if !r.OK() {
		return nil, &LedgerError{
			Op:          "submit",
			Transaction: ledger.SubmitDocument,
			Node:        req.Sender,
			Err:         r.Err,
		}
	}

	senderFaction, _ := e.registry.Faction(req.Sender)
	recipientFaction, _ := e.registry.Faction(req.Recipient)

	res.Document = &Document{
		DocID:            docID,
		FileName:         fileName,
		SenderNode:       req.Sender,
		RecipientNode:    req.Recipient,
		AllowedViewers:   viewers,
		Status:           Pending,
		ContentHash:      hash,
		CreatedAt:        createdAt,
		SenderFaction:    string(senderFaction),
		RecipientFaction: string(recipientFaction),
	}

	e.logger.WithFields(logrus.Fields{
		"doc_id":    docID,
		"sender":    req.Sender,
		"recipient": req.Recipient,
		"viewers":   len(viewers),
		"hash":      hash,
	}).Info("Document submitted")

	return res, nil
}

// Resolve approves or rejects a pending document on behalf of actor, who must
// belong to the recipient's faction.
func (e *Engine) Resolve(ctx context.Context, req ResolveRequest) (*ResolveResult, error) {
	if req.Decision != Approved && req.Decision != Rejected {
		return nil, &ValidationError{
			Field: "decision",
			Err:   fmt.Errorf("%w: %q", ErrInvalidDecision, req.Decision),
		}
	}

	message := strings.TrimSpace(req.Message)
	if req.Decision == Rejected && message == "" {
		return nil, &ValidationError{Field: "message", Err: ErrMissingReason}
	}

	if err := e.checkNode("actor", req.Actor); err != nil {
		return nil, err
	}
	actor, _ := e.registry.Get(req.Actor)

	if message == "" {
		message = fmt.Sprintf("Approved by %s", actor.Name())
	}

	res := &ResolveResult{}

	var current *Document

	read := ledger.Evaluate(ctx, e.ledger, ledger.GetDocumentByID, req.DocID, req.Actor)
	switch read.Outcome {
	case ledger.Supported:
		doc, err := decodeDocument(read.Payload)
		if err != nil {
			return nil, &LedgerError{"resolve", ledger.GetDocumentByID, req.Actor, err}
		}

		if err := e.checkApprover(actor, doc); err != nil {
			return nil, err
		}

		if _, err := Transition(doc.Status, req.Decision); err != nil {
			var ite *InvalidTransitionError
			if errors.As(err, &ite) {
				ite.DocID = req.DocID
			}
			return nil, err
		}

		current = doc
		res.Verified = true
	case ledger.Unsupported:
		e.logger.WithFields(logrus.Fields{
			"tx":     ledger.GetDocumentByID,
			"doc_id": req.DocID,
		}).Warn("Ledger cannot read documents, state and approver left to the ledger")
	case ledger.Rejected:
		return nil, e.readError("resolve", req.DocID, req.Actor, read.Err)
	default:
		return nil, &LedgerError{"resolve", ledger.GetDocumentByID, req.Actor, read.Err}
	}

	tx := ledger.ApproveDocument
	if req.Decision == Rejected {
		tx = ledger.RejectDocument
	}

	write := ledger.Submit(ctx, e.ledger, tx, req.DocID, req.Actor, message)
	switch write.Outcome {
	case ledger.Supported:
		doc, err := decodeDocument(write.Payload)
		if err != nil {
			return nil, &LedgerError{"resolve", tx, req.Actor, err}
		}
		res.Document = Redact(doc, req.Actor)
		res.Recorded = true
	case ledger.Unsupported:
		if current == nil {
			return nil, fmt.Errorf("%w: %s and %s", ErrCapabilityMissing,
				ledger.GetDocumentByID, tx)
		}

		e.logger.WithFields(logrus.Fields{
			"tx":       tx,
			"doc_id":   req.DocID,
			"actor":    req.Actor,
			"decision": req.Decision,
		}).Warn("Ledger does not support resolution, decision NOT recorded")

		res.Document = e.unrecordedResolution(current, req, message)
	case ledger.Rejected:
		if errors.Is(write.Err, ledger.ErrAlreadyResolved) {
			ite := &InvalidTransitionError{DocID: req.DocID, To: req.Decision}
			if current != nil {
				ite.From = current.Status
			}
			return nil, ite
		}
		if errors.Is(write.Err, ledger.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, req.DocID)
		}
		if errors.Is(write.Err, ledger.ErrNotApprover) {
			return nil, fmt.Errorf("%w: %s may not resolve %s", ErrNotApprover, req.Actor, req.DocID)
		}
		return nil, &LedgerError{"resolve", tx, req.Actor, write.Err}
	default:
		return nil, &LedgerError{"resolve", tx, req.Actor, write.Err}
	}

	e.logger.WithFields(logrus.Fields{
		"doc_id":   req.DocID,
		"actor":    req.Actor,
		"decision": req.Decision,
		"recorded": res.Recorded,
		"verified": res.Verified,
	}).Info("Document resolved")

	return res, nil
}

// View returns a document redacted for viewer.
func (e *Engine) View(ctx context.Context, docID string, viewer string) (*ViewResult, error) {
	if err := e.checkNode("viewer", viewer); err != nil {
		return nil, err
	}

	r := ledger.Evaluate(ctx, e.ledger, ledger.GetDocumentByID, docID, viewer)
	switch r.Outcome {
	case ledger.Supported:
	case ledger.Unsupported:
		return nil, fmt.Errorf("%w: %s", ErrCapabilityMissing, ledger.GetDocumentByID)
	case ledger.Rejected:
		return nil, e.readError("view", docID, viewer, r.Err)
	default:
		return nil, &LedgerError{"view", ledger.GetDocumentByID, viewer, r.Err}
	}

	doc, err := decodeDocument(r.Payload)
	if err != nil {
		return nil, &LedgerError{"view", ledger.GetDocumentByID, viewer, err}
	}

	return &ViewResult{
		Document:   Redact(doc, viewer),
		FullAccess: doc.CanView(viewer),
	}, nil
}

// Content returns the payload of docID to viewer, who must have full access
// to the document. The configured content store must be able to read.
func (e *Engine) Content(ctx context.Context, docID string, viewer string) (*ContentResult, error) {
	rs, ok := e.store.(content.ReadStore)
	if !ok {
		return nil, ErrContentUnreadable
	}

	view, err := e.View(ctx, docID, viewer)
	if err != nil {
		return nil, err
	}

	if !view.FullAccess {
		return nil, fmt.Errorf("%w: %s may not read %s", ErrRestricted, viewer, docID)
	}

	hash := view.Document.ContentHash
	if hash == content.UnavailableHash {
		return nil, fmt.Errorf("%w: %s was never stored", ErrContentUnavailable, docID)
	}

	data, err := rs.Get(ctx, hash)
	if errors.Is(err, content.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrContentUnavailable, hash)
	}
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"doc_id": docID,
			"hash":   hash,
		}).Error("Cannot read content")
		return nil, fmt.Errorf("reading %s: %w", hash, err)
	}

	return &ContentResult{Document: view.Document, Data: data}, nil
}

// ListFor returns the documents node sent or received.
func (e *Engine) ListFor(ctx context.Context, node string) (*ListResult, error) {
	if err := e.checkNode("node", node); err != nil {
		return nil, err
	}

	r := ledger.Evaluate(ctx, e.ledger, ledger.GetDocumentsForNode, node)
	switch r.Outcome {
	case ledger.Supported:
	case ledger.Unsupported:
		e.logger.WithFields(logrus.Fields{
			"tx":   ledger.GetDocumentsForNode,
			"node": node,
		}).Warn("Ledger cannot list documents, returning placeholder")

		return e.placeholder(node)
	default:
		return nil, &LedgerError{"list", ledger.GetDocumentsForNode, node, r.Err}
	}

	docs, err := decodeDocuments(r.Payload)
	if err != nil {
		return nil, &LedgerError{"list", ledger.GetDocumentsForNode, node, err}
	}

	res := &ListResult{Node: node, Documents: []*Document{}}
	for _, d := range docs {
		if d.SenderNode != node && d.RecipientNode != node {
			continue
		}
		res.Documents = append(res.Documents, d)
	}

	return res, nil
}

func (e *Engine) checkNode(field, id string) error {
	if !e.registry.Has(id) {
		return &ValidationError{Field: field, Err: fmt.Errorf("%w: %q", ErrUnknownNode, id)}
	}
	return nil
}

func (e *Engine) checkApprover(actor *registry.Node, doc *Document) error {
	f, ok := e.registry.Faction(doc.RecipientNode)
	if !ok || actor.Faction != f {
		return fmt.Errorf("%w: %s cannot resolve a document sent to %s",
			ErrNotApprover, actor.ID, doc.RecipientNode)
	}
	return nil
}

func (e *Engine) readError(op, docID, node string, err error) error {
	if errors.Is(err, ledger.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
	}
	return &LedgerError{op, ledger.GetDocumentByID, node, err}
}

func (e *Engine) unrecordedResolution(current *Document, req ResolveRequest, message string) *Document {
	doc := Redact(current, req.Actor)

	now := e.now().UTC()

	doc.Status = req.Decision
	doc.ResolutionMessage = message
	doc.ResolvedBy = req.Actor
	doc.ResolvedAt = &now

	return doc
}

func (e *Engine) placeholder(node string) (*ListResult, error) {
	docID, err := NewDocID()
	if err != nil {
		return nil, err
	}

	sender := "origin-station"
	if origins := e.registry.ByFaction(registry.Origin); len(origins) > 0 {
		sender = origins[0].ID
	}

	return &ListResult{
		Node: node,
		Documents: []*Document{
			{
				DocID:          docID,
				FileName:       PlaceholderFileName,
				SenderNode:     sender,
				RecipientNode:  node,
				AllowedViewers: []string{},
				Status:         Pending,
				ContentHash:    PlaceholderHash,
				CreatedAt:      e.now().UTC(),
				Placeholder:    true,
			},
		},
		Placeholder: true,
	}, nil
}
