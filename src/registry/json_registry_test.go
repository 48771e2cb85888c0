package registry

import (
	"reflect"
	"testing"
)

func TestJSONRegistry(t *testing.T) {
	dir := t.TempDir()

	store := NewJSONRegistry(dir)

	// Try a read, should get nothing
	r, err := store.Registry()
	if err == nil {
		t.Fatalf("store.Registry() should generate an error")
	}
	if r != nil {
		t.Fatalf("registry: %v", r)
	}

	if err := store.Write(DefaultNodes()); err != nil {
		t.Fatalf("err: %v", err)
	}

	// Try a read, should find 8 nodes
	r, err = store.Registry()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if r.Len() != 8 {
		t.Fatalf("registry should have 8 nodes, not %d", r.Len())
	}

	for i, n := range r.Nodes() {
		if !reflect.DeepEqual(*n, *DefaultNodes()[i]) {
			t.Fatalf("nodes[%d] should be %+v, not %+v", i, *DefaultNodes()[i], *n)
		}
	}
}
