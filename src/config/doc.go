// Package config defines the configuration for a waybill node.
//
// Whether waybill is started from Go code or from the command line, it uses
// the Config object defined in this package to store and forward
// configuration options. On top of these options, waybill relies on a data
// directory, defined by Config.DataDir, where it looks for a few additional
// files:
//
//  waybill.toml // (optional) values for any of the command line flags.
//  nodes.json // (optional, defaults to the reference corridor) the node registry.
//  badger_db // the dev ledger database when Store is set.
//  content // the local content store when Content is "local".
package config
