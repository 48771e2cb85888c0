package access

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mosaicnetworks/waybill/src/registry"
)

func newTestValidator() *Validator {
	return NewValidator(registry.NewDefaultRegistry())
}

func TestValidateViewersSameFaction(t *testing.T) {
	v := newTestValidator()

	accepted, err := v.ValidateViewers("origin-station",
		[]string{"origin-rail", "origin-customs", "origin-rail"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	expected := []string{"origin-rail", "origin-customs"}
	if !reflect.DeepEqual(accepted, expected) {
		t.Fatalf("accepted should be %v, not %v", expected, accepted)
	}
}

func TestValidateViewersEmpty(t *testing.T) {
	v := newTestValidator()

	accepted, err := v.ValidateViewers("dest-station", nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if accepted == nil || len(accepted) != 0 {
		t.Fatalf("accepted should be an empty set, not %#v", accepted)
	}
}

func TestValidateViewersRejectsWholeRequest(t *testing.T) {
	v := newTestValidator()

	accepted, err := v.ValidateViewers("origin-station",
		[]string{"origin-rail", "dest-customs", "ghost"})
	if err == nil {
		t.Fatalf("a foreign viewer should reject the request")
	}
	if accepted != nil {
		t.Fatalf("no partial list should be returned, got %v", accepted)
	}

	var rejected *RejectedViewersError
	if !errors.As(err, &rejected) {
		t.Fatalf("err should be a RejectedViewersError, not %T", err)
	}
	if !errors.Is(err, ErrForeignViewer) {
		t.Fatalf("err should wrap ErrForeignViewer")
	}
	if !reflect.DeepEqual(rejected.Invalid, []string{"dest-customs", "ghost"}) {
		t.Fatalf("invalid list is %v", rejected.Invalid)
	}
	if rejected.SenderFaction != registry.Origin {
		t.Fatalf("sender faction should be origin, not %s", rejected.SenderFaction)
	}
}

func TestValidateViewersUnknownSender(t *testing.T) {
	v := newTestValidator()

	if _, err := v.ValidateViewers("ghost", nil); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("err should be ErrUnknownNode, not %v", err)
	}
}

// Accepted iff every viewer shares the sender's faction, over every
// sender/viewer pair of the reference registry.
func TestValidateViewersPairwise(t *testing.T) {
	r := registry.NewDefaultRegistry()
	v := NewValidator(r)

	for _, sender := range r.Nodes() {
		for _, viewer := range r.Nodes() {
			_, err := v.ValidateViewers(sender.ID, []string{viewer.ID})
			same := sender.Faction == viewer.Faction
			if same && err != nil {
				t.Fatalf("%s -> %s should be accepted: %v", sender.ID, viewer.ID, err)
			}
			if !same && err == nil {
				t.Fatalf("%s -> %s should be rejected", sender.ID, viewer.ID)
			}
		}
	}
}

func TestCanView(t *testing.T) {
	viewers := []string{"origin-rail"}

	cases := []struct {
		viewer   string
		expected bool
	}{
		{"origin-station", true},
		{"dest-station", true},
		{"origin-rail", true},
		{"origin-customs", false},
		{"dest-customs", false},
		{"", false},
	}

	for _, c := range cases {
		got := CanView("origin-station", "dest-station", viewers, c.viewer)
		if got != c.expected {
			t.Fatalf("CanView(%q) should be %v", c.viewer, c.expected)
		}
	}
}
