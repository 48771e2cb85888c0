// Package registry defines the nodes of a waybill network and the static
// directory that resolves them.
//
// A node is an organizational endpoint (a station, a rail operator, a customs
// or border office) that sends, receives and reviews documents. Every node
// belongs to exactly one faction. Factions are mutually distrusting: the
// viewers a sender may grant access to are restricted to its own faction.
//
// The directory is loaded once at startup, either from a nodes.json file in
// the data directory or from the built-in reference table, and is never
// mutated afterwards. Components receive the Registry at construction; there
// is no package-level node table.
package registry
