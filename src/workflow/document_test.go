package workflow

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		from     Status
		decision Status
		to       Status
		err      error
	}{
		{Pending, Approved, Approved, nil},
		{Pending, Rejected, Rejected, nil},
		{Approved, Rejected, Approved, ErrInvalidTransition},
		{Rejected, Approved, Rejected, ErrInvalidTransition},
		{Approved, Approved, Approved, ErrInvalidTransition},
		{Pending, Pending, Pending, ErrInvalidDecision},
	}

	for _, c := range cases {
		to, err := Transition(c.from, c.decision)
		if to != c.to {
			t.Fatalf("%s -> %s should give %s, not %s", c.from, c.decision, c.to, to)
		}
		if c.err == nil && err != nil || c.err != nil && !errors.Is(err, c.err) {
			t.Fatalf("%s -> %s: expected error %v, got %v", c.from, c.decision, c.err, err)
		}
	}
}

func TestRedactDoesNotMutate(t *testing.T) {
	d := &Document{
		DocID:          "d",
		SenderNode:     "origin-station",
		RecipientNode:  "dest-station",
		AllowedViewers: []string{"origin-rail"},
		ContentHash:    "bafy",
	}

	r := Redact(d, "dest-border")
	if !r.Restricted() {
		t.Fatalf("outsider should get a restricted copy")
	}
	if d.ContentHash != "bafy" {
		t.Fatalf("Redact should not modify the original")
	}

	if Redact(d, "origin-rail").Restricted() {
		t.Fatalf("allowed viewer should see the hash")
	}
}

func TestNewDocID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := NewDocID()
		if err != nil {
			t.Fatal(err)
		}
		if len(id) != 32 || seen[id] {
			t.Fatalf("bad or duplicate id %q", id)
		}
		seen[id] = true
	}
}
