package registry

import (
	"fmt"
)

// Registry is a read-only directory of nodes. Iteration order is the order in
// which the nodes were supplied, which makes every derived view (aggregation,
// statistics) reproducible.
type Registry struct {
	nodes []*Node
	byID  map[string]*Node
}

// NewRegistry creates a Registry from a list of nodes. It fails on empty or
// duplicate IDs and on unknown factions.
func NewRegistry(nodes []*Node) (*Registry, error) {
	r := &Registry{
		nodes: make([]*Node, 0, len(nodes)),
		byID:  make(map[string]*Node, len(nodes)),
	}

	for i, n := range nodes {
		if n == nil || n.ID == "" {
			return nil, fmt.Errorf("node %d has no id", i)
		}
		if !n.Faction.Valid() {
			return nil, fmt.Errorf("node %s has unknown faction %q", n.ID, n.Faction)
		}
		if _, ok := r.byID[n.ID]; ok {
			return nil, fmt.Errorf("node %s is declared twice", n.ID)
		}

		cp := *n
		r.nodes = append(r.nodes, &cp)
		r.byID[cp.ID] = &cp
	}

	return r, nil
}

// Get returns the node with the given ID.
func (r *Registry) Get(id string) (*Node, bool) {
	n, ok := r.byID[id]
	return n, ok
}

// Has reports whether id is a known node.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Faction returns the faction of a node, and false if the node is unknown.
func (r *Registry) Faction(id string) (Faction, bool) {
	n, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return n.Faction, true
}

// Nodes returns the nodes in registry order.
func (r *Registry) Nodes() []*Node {
	res := make([]*Node, len(r.nodes))
	copy(res, r.nodes)
	return res
}

// IDs returns the node IDs in registry order.
func (r *Registry) IDs() []string {
	res := make([]string, 0, len(r.nodes))
	for _, n := range r.nodes {
		res = append(res, n.ID)
	}
	return res
}

// ByFaction returns the nodes of a faction in registry order.
func (r *Registry) ByFaction(f Faction) []*Node {
	res := []*Node{}
	for _, n := range r.nodes {
		if n.Faction == f {
			res = append(res, n)
		}
	}
	return res
}

// Len returns the number of nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}
