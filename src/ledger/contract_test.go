package ledger

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/mosaicnetworks/waybill/src/common"
)

var testFactions = map[string]string{
	"origin-station": "origin",
	"origin-rail":    "origin",
	"dest-station":   "dest",
}

func testFaction(n string) string {
	return testFactions[n]
}

func newTestContract(t *testing.T) *Contract {
	return NewContract(NewInmemStore(), testFaction,
		common.NewTestEntry(t, common.TestLogLevel))
}

func submitTestDocument(t *testing.T, c *Contract, docID string, viewers string) {
	_, err := c.Submit(SubmitDocument, []string{
		docID, "manifest.pdf", "origin-station", "dest-station", viewers, "bafyhash",
		"2024-01-02T03:04:05Z",
	})
	if err != nil {
		t.Fatalf("SubmitDocument: %v", err)
	}
}

func TestContractSubmitAndGet(t *testing.T) {
	c := newTestContract(t)

	submitTestDocument(t, c, "doc1", `["origin-rail"]`)

	payload, err := c.Evaluate(GetDocumentByID, []string{"doc1", "origin-rail"})
	if err != nil {
		t.Fatalf("GetDocumentById: %v", err)
	}

	var r Record
	if err := Decode(payload, &r); err != nil {
		t.Fatal(err)
	}

	if r.Status != StatusPending {
		t.Fatalf("status should be pending, not %s", r.Status)
	}
	if r.ContentHash != "bafyhash" {
		t.Fatalf("allowed viewer should see the hash, got %s", r.ContentHash)
	}
	if r.SenderFaction != "origin" || r.RecipientFaction != "dest" {
		t.Fatalf("factions not recorded: %s %s", r.SenderFaction, r.RecipientFaction)
	}
	if r.Timestamp != "2024-01-02T03:04:05Z" {
		t.Fatalf("timestamp should be kept, got %s", r.Timestamp)
	}

	payload, err = c.Evaluate(GetDocumentByID, []string{"doc1", "dest-rail"})
	if err != nil {
		t.Fatal(err)
	}
	var restricted Record
	if err := Decode(payload, &restricted); err != nil {
		t.Fatal(err)
	}
	if restricted.ContentHash != RestrictedHash {
		t.Fatalf("outsider should get a restricted hash, got %s", restricted.ContentHash)
	}
	if restricted.FileName != "manifest.pdf" || !reflect.DeepEqual(restricted.AllowedViewers, []string{"origin-rail"}) {
		t.Fatalf("outsider should still see the metadata: %+v", restricted)
	}
}

func TestContractDuplicateSubmission(t *testing.T) {
	c := newTestContract(t)

	submitTestDocument(t, c, "doc1", "[]")

	_, err := c.Submit(SubmitDocument, []string{
		"doc1", "other.pdf", "origin-station", "dest-station", "[]", "h",
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("err should be ErrAlreadyExists, not %v", err)
	}
}

func TestContractResolutionRequiresRecipientSide(t *testing.T) {
	c := newTestContract(t)

	submitTestDocument(t, c, "doc1", "[]")
	before := c.StateHash()

	for _, actor := range []string{"origin-station", "origin-rail", "unknown-node"} {
		if _, err := c.Submit(ApproveDocument, []string{"doc1", actor, "ok"}); !errors.Is(err, ErrNotApprover) {
			t.Fatalf("%s approving should be refused with ErrNotApprover, got %v", actor, err)
		}
		if _, err := c.Submit(RejectDocument, []string{"doc1", actor, "no"}); !errors.Is(err, ErrNotApprover) {
			t.Fatalf("%s rejecting should be refused with ErrNotApprover, got %v", actor, err)
		}
	}

	if !bytes.Equal(before, c.StateHash()) {
		t.Fatalf("refused resolutions should not change the state hash")
	}

	payload, err := c.Evaluate(GetDocumentByID, []string{"doc1", "dest-station"})
	if err != nil {
		t.Fatal(err)
	}
	var r Record
	if err := Decode(payload, &r); err != nil {
		t.Fatal(err)
	}
	if r.Status != StatusPending || r.ResolvedBy != "" {
		t.Fatalf("document should still be pending, got %s resolved by %q", r.Status, r.ResolvedBy)
	}

	if !IsRejection(fmt.Errorf("wrapped: %w", ErrNotApprover)) {
		t.Fatalf("ErrNotApprover should be a rejection")
	}
}

func TestContractResolutionIsTerminal(t *testing.T) {
	c := newTestContract(t)

	submitTestDocument(t, c, "doc1", "[]")

	if _, err := c.Submit(RejectDocument, []string{"doc1", "dest-station", " "}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("blank reason should be refused, got %v", err)
	}

	if _, err := c.Submit(RejectDocument, []string{"doc1", "dest-station", "missing customs stamp"}); err != nil {
		t.Fatalf("RejectDocument: %v", err)
	}

	if _, err := c.Submit(ApproveDocument, []string{"doc1", "dest-station", "ok"}); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second resolution should be refused, got %v", err)
	}

	payload, err := c.Evaluate(GetMessagesForNode, []string{"origin-station"})
	if err != nil {
		t.Fatal(err)
	}

	var msgs []NodeMessage
	if err := Decode(payload, &msgs); err != nil {
		t.Fatal(err)
	}

	if len(msgs) != 1 {
		t.Fatalf("sender should have 1 message, not %d", len(msgs))
	}
	if msgs[0].Type != MessageRejection || msgs[0].Message != "Document rejected: missing customs stamp" {
		t.Fatalf("unexpected message %+v", msgs[0])
	}
}

func TestContractDocumentsForNode(t *testing.T) {
	c := newTestContract(t)

	submitTestDocument(t, c, "doc1", `["origin-rail"]`)
	submitTestDocument(t, c, "doc2", "[]")

	cases := map[string]int{
		"origin-station": 2,
		"dest-station":   2,
		"origin-rail":    1,
		"dest-rail":      0,
	}

	for node, expected := range cases {
		payload, err := c.Evaluate(GetDocumentsForNode, []string{node})
		if err != nil {
			t.Fatal(err)
		}
		var records []Record
		if err := Decode(payload, &records); err != nil {
			t.Fatal(err)
		}
		if len(records) != expected {
			t.Fatalf("%s should see %d documents, not %d", node, expected, len(records))
		}
	}
}

func TestChainHashIsOrderSensitive(t *testing.T) {
	a, b := []byte("SubmitDocument"), []byte("ApproveDocument")

	ab := chainHash(chainHash(nil, a), b)
	ba := chainHash(chainHash(nil, b), a)

	if bytes.Equal(ab, ba) {
		t.Fatalf("chaining a then b should differ from chaining b then a")
	}
	if !bytes.Equal(ab, chainHash(chainHash(nil, a), b)) {
		t.Fatalf("chaining should be deterministic")
	}
	if len(ab) != sha256.Size {
		t.Fatalf("state hash should be %d bytes, not %d", sha256.Size, len(ab))
	}
}

func TestContractStateHash(t *testing.T) {
	c1 := newTestContract(t)
	c2 := newTestContract(t)

	for _, c := range []*Contract{c1, c2} {
		submitTestDocument(t, c, "doc1", "[]")
		if _, err := c.Submit(ApproveDocument, []string{"doc1", "dest-station", "ok"}); err != nil {
			t.Fatal(err)
		}
	}

	if c1.Committed() != 2 {
		t.Fatalf("2 transactions should be committed, not %d", c1.Committed())
	}

	if !bytes.Equal(c1.StateHash(), c2.StateHash()) {
		t.Fatalf("same transactions should yield the same state hash")
	}

	// failed transactions are not committed
	before := c1.StateHash()
	c1.Submit(ApproveDocument, []string{"doc1", "dest-station", "again"})
	if !bytes.Equal(before, c1.StateHash()) {
		t.Fatalf("a refused transaction should not change the state hash")
	}
}

func TestContractUnknownTransaction(t *testing.T) {
	c := newTestContract(t)

	_, err := c.Submit("ArchiveDocument", nil)
	if !IsUnsupported(err) {
		t.Fatalf("unknown transaction should be unsupported, got %v", err)
	}

	_, err = c.Evaluate(SubmitDocument, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("evaluating a submit transaction should be invalid, got %v", err)
	}
}
