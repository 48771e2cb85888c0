package messages

import (
	"context"
	"testing"

	"github.com/mosaicnetworks/waybill/src/access"
	"github.com/mosaicnetworks/waybill/src/common"
	"github.com/mosaicnetworks/waybill/src/content"
	"github.com/mosaicnetworks/waybill/src/ledger"
	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/mosaicnetworks/waybill/src/workflow"
)

func newTestFeed(t *testing.T, opts ...ledger.Option) (*Feed, *workflow.Engine) {
	logger := common.NewTestEntry(t, common.TestLogLevel)
	reg := registry.NewDefaultRegistry()

	l := ledger.NewLocalLedger(ledger.NewContract(ledger.NewInmemStore(), nil, logger), logger, opts...)
	e := workflow.NewEngine(reg, access.NewValidator(reg), l, content.NewInmemStore(), 0, logger)

	return NewFeed(e, l, logger), e
}

func sendAndReject(t *testing.T, e *workflow.Engine) string {
	ctx := context.Background()

	res, err := e.Submit(ctx, workflow.SubmitRequest{
		Sender:    "origin-station",
		Recipient: "dest-station",
		FileName:  "manifest.pdf",
		Content:   []byte("manifest"),
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Resolve(ctx, workflow.ResolveRequest{
		DocID:    res.Document.DocID,
		Actor:    "dest-station",
		Decision: workflow.Rejected,
		Message:  "missing customs stamp",
	})
	if err != nil {
		t.Fatal(err)
	}

	return res.Document.DocID
}

func TestFeedFromLedger(t *testing.T) {
	f, e := newTestFeed(t)

	docID := sendAndReject(t, e)

	res, err := f.For(context.Background(), "origin-station")
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if res.Derived {
		t.Fatalf("feed should come from the ledger")
	}
	if len(res.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(res.Messages))
	}

	m := res.Messages[0]
	if m.Category != RejectionReceived || m.Priority != High || m.RelatedDocID != docID {
		t.Fatalf("unexpected message %+v", m)
	}
	if m.Body != "Document rejected: missing customs stamp" || m.From != "dest-station" {
		t.Fatalf("unexpected message %+v", m)
	}
	if res.Summary.Rejections != 1 {
		t.Fatalf("summary should count the rejection, got %+v", res.Summary)
	}

	// the recipient gets nothing from the ledger log
	res, err = f.For(context.Background(), "dest-station")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Messages) != 0 {
		t.Fatalf("recipient should have no ledger messages, got %+v", res.Messages)
	}
}

func TestFeedDerived(t *testing.T) {
	f, e := newTestFeed(t, ledger.WithUnsupported(ledger.GetMessagesForNode))

	sendAndReject(t, e)

	res, err := f.For(context.Background(), "dest-station")
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if !res.Derived || res.Placeholder {
		t.Fatalf("feed should be derived from real documents: %+v", res)
	}
	if len(res.Messages) != 1 || res.Messages[0].Category != DocumentReceived {
		t.Fatalf("expected one document-received message, got %+v", res.Messages)
	}

	res, err = f.For(context.Background(), "origin-station")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Messages) != 1 || res.Messages[0].Category != RejectionReceived {
		t.Fatalf("expected one rejection-received message, got %+v", res.Messages)
	}
}

func TestFeedUnknownNode(t *testing.T) {
	f, _ := newTestFeed(t)

	if _, err := f.For(context.Background(), "moon-base"); !workflow.IsValidation(err) {
		t.Fatalf("unknown node should be a validation error, got %v", err)
	}
}
