package registry

// Faction partitions the nodes of the network into visibility domains.
type Faction string

const (
	// Origin is the faction of the sending side of the corridor.
	Origin Faction = "origin"
	// Dest is the faction of the receiving side of the corridor.
	Dest Faction = "dest"
)

// Valid reports whether f is one of the two known factions.
func (f Faction) Valid() bool {
	return f == Origin || f == Dest
}

// Node is an immutable entry of the registry.
type Node struct {
	ID           string  `json:"id"`
	Faction      Faction `json:"faction"`
	Organization string  `json:"org"`
	DisplayName  string  `json:"name"`
	Port         int     `json:"port"`
	Icon         string  `json:"icon"`
}

// Name returns the display name of the node, or its ID when no display name
// was configured.
func (n *Node) Name() string {
	if n.DisplayName == "" {
		return n.ID
	}
	return n.DisplayName
}

// SameFaction reports whether both nodes belong to the same faction.
func (n *Node) SameFaction(other *Node) bool {
	return other != nil && n.Faction == other.Faction
}
