package messages

import (
	"reflect"
	"testing"
	"time"

	"github.com/mosaicnetworks/waybill/src/workflow"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func doc(id, sender, recipient string, status workflow.Status, at time.Time) *workflow.Document {
	return &workflow.Document{
		DocID:         id,
		FileName:      id + ".pdf",
		SenderNode:    sender,
		RecipientNode: recipient,
		Status:        status,
		CreatedAt:     at,
	}
}

func TestDeriveSenderStatus(t *testing.T) {
	d := doc("manifest", "origin-station", "dest-station", workflow.Pending, t0)

	msgs := Derive("origin-station", []*workflow.Document{d})
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Category != DocumentSent || msgs[0].Priority != Normal {
		t.Fatalf("pending document should give a normal document-sent message, got %+v", msgs[0])
	}
	if msgs[0].Body != "Document sent and pending approval" || msgs[0].From != "dest-station" {
		t.Fatalf("unexpected message %+v", msgs[0])
	}

	d.Status = workflow.Approved
	msgs = Derive("origin-station", []*workflow.Document{d})
	if len(msgs) != 1 || msgs[0].Category != ApprovalReceived || msgs[0].Priority != High {
		t.Fatalf("approved document should give a high approval-received message, got %+v", msgs)
	}
	if msgs[0].Body != "Document approved: manifest.pdf" {
		t.Fatalf("unexpected body %q", msgs[0].Body)
	}

	d.Status = workflow.Rejected
	msgs = Derive("origin-station", []*workflow.Document{d})
	if len(msgs) != 1 || msgs[0].Category != RejectionReceived || msgs[0].Priority != High {
		t.Fatalf("rejected document should give a high rejection-received message, got %+v", msgs)
	}
}

func TestDeriveRecipient(t *testing.T) {
	d := doc("manifest", "origin-station", "dest-station", workflow.Approved, t0)

	msgs := Derive("dest-station", []*workflow.Document{d})
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	expected := Message{
		ID:           "doc-manifest-received",
		From:         "origin-station",
		To:           "dest-station",
		Body:         "New document received: manifest.pdf",
		Category:     DocumentReceived,
		RelatedDocID: "manifest",
		Timestamp:    t0,
		Priority:     Normal,
	}
	if !reflect.DeepEqual(msgs[0], expected) {
		t.Fatalf("expected %+v, got %+v", expected, msgs[0])
	}

	// viewers and self-addressed documents give nothing
	if msgs := Derive("origin-rail", []*workflow.Document{d}); len(msgs) != 0 {
		t.Fatalf("viewer should get no messages, got %+v", msgs)
	}
	self := doc("self", "origin-station", "origin-station", workflow.Pending, t0)
	if msgs := Derive("origin-station", []*workflow.Document{self}); len(msgs) != 0 {
		t.Fatalf("self-addressed document should give no messages, got %+v", msgs)
	}
}

func TestDeriveOrder(t *testing.T) {
	docs := []*workflow.Document{
		doc("old", "origin-station", "dest-station", workflow.Pending, t0),
		doc("tie1", "dest-station", "origin-station", workflow.Pending, t0.Add(time.Hour)),
		doc("new", "origin-station", "dest-rail", workflow.Rejected, t0.Add(2*time.Hour)),
		doc("tie2", "origin-station", "dest-customs", workflow.Pending, t0.Add(time.Hour)),
	}

	msgs := Derive("origin-station", docs)

	ids := []string{}
	for _, m := range msgs {
		ids = append(ids, m.RelatedDocID)
	}

	expected := []string{"new", "tie1", "tie2", "old"}
	if !reflect.DeepEqual(ids, expected) {
		t.Fatalf("expected order %v, got %v", expected, ids)
	}

	s := Summarize(msgs)
	if s != (Summary{Total: 4, Rejections: 1, General: 3}) {
		t.Fatalf("unexpected summary %+v", s)
	}
}
