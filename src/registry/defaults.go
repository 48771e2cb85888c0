package registry

// Organizations of the reference deployment.
const (
	OriginOrg = "OriginOrgMSP"
	DestOrg   = "DestOrgMSP"
)

// DefaultNodes returns the reference eight-node corridor: four nodes per
// faction, each exposing its ledger peer on a distinct port.
func DefaultNodes() []*Node {
	return []*Node{
		{ID: "origin-station", Faction: Origin, Organization: OriginOrg, DisplayName: "Origin Station", Port: 7051, Icon: "🚉"},
		{ID: "origin-rail", Faction: Origin, Organization: OriginOrg, DisplayName: "Origin Rail", Port: 8051, Icon: "🚂"},
		{ID: "origin-customs", Faction: Origin, Organization: OriginOrg, DisplayName: "Origin Customs", Port: 9051, Icon: "🛃"},
		{ID: "origin-border", Faction: Origin, Organization: OriginOrg, DisplayName: "Origin Border", Port: 10051, Icon: "🛂"},
		{ID: "dest-station", Faction: Dest, Organization: DestOrg, DisplayName: "Dest Station", Port: 11051, Icon: "🚉"},
		{ID: "dest-rail", Faction: Dest, Organization: DestOrg, DisplayName: "Dest Rail", Port: 12051, Icon: "🚂"},
		{ID: "dest-customs", Faction: Dest, Organization: DestOrg, DisplayName: "Dest Customs", Port: 13051, Icon: "🛃"},
		{ID: "dest-border", Faction: Dest, Organization: DestOrg, DisplayName: "Dest Border", Port: 14051, Icon: "🛂"},
	}
}

// NewDefaultRegistry returns a Registry over DefaultNodes.
func NewDefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultNodes())
	if err != nil {
		// the reference table is static and valid
		panic(err)
	}
	return r
}
