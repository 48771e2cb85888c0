package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mosaicnetworks/waybill/src/common"
)

func TestSocketRoundTrip(t *testing.T) {
	logger := common.NewTestEntry(t, common.TestLogLevel)

	local := newTestLedger(t, WithUnsupported(GetMessagesForNode))

	server, err := NewSocketServer("127.0.0.1:0", local, time.Second, logger)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	defer server.Close()

	go server.Serve()

	client := NewSocketClient(server.Addr().String(), time.Second)
	defer client.Close()

	ctx := context.Background()

	_, err = client.SubmitTransaction(ctx, SubmitDocument,
		"doc1", "a.pdf", "origin-station", "dest-station", `["origin-rail"]`, "h")
	if err != nil {
		t.Fatalf("SubmitDocument: %v", err)
	}

	payload, err := client.EvaluateTransaction(ctx, GetDocumentByID, "doc1", "origin-rail")
	if err != nil {
		t.Fatalf("GetDocumentById: %v", err)
	}

	var r Record
	if err := Decode(payload, &r); err != nil {
		t.Fatal(err)
	}
	if r.DocID != "doc1" || r.ContentHash != "h" {
		t.Fatalf("unexpected record %+v", r)
	}

	_, err = client.EvaluateTransaction(ctx, GetMessagesForNode, "origin-station")
	if !IsUnsupported(err) {
		t.Fatalf("unsupported should survive the socket, got %v", err)
	}

	_, err = client.EvaluateTransaction(ctx, GetDocumentByID, "missing", "origin-rail")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("not found should survive the socket, got %v", err)
	}

	_, err = client.SubmitTransaction(ctx, ApproveDocument, "doc1", "origin-station", "self")
	if !errors.Is(err, ErrNotApprover) {
		t.Fatalf("not approver should survive the socket, got %v", err)
	}

	client.SubmitTransaction(ctx, ApproveDocument, "doc1", "dest-station", "ok")
	_, err = client.SubmitTransaction(ctx, RejectDocument, "doc1", "dest-station", "late")
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("already resolved should survive the socket, got %v", err)
	}

	if res := Evaluate(ctx, client, GetDocumentsForNode, "origin-station"); res.Outcome != Supported {
		t.Fatalf("query should be supported over the socket, got %s", res.Outcome)
	}
}

func TestSocketClientUnreachable(t *testing.T) {
	client := NewSocketClient("127.0.0.1:1", 100*time.Millisecond)

	res := Evaluate(context.Background(), client, GetDocumentsForNode, "origin-station")
	if res.Outcome != TransientFailure {
		t.Fatalf("unreachable ledger should be a transient failure, got %s", res.Outcome)
	}
}
