// Package catalog loads catalog snapshots: the world items and candidate
// mentions the alias index is built from.
//
// Snapshots come from the document load configuration (JSON), or from a
// catalog file in JSON or YAML form. A Watcher reloads a catalog file when
// it changes on disk, coalescing bursts of writes into one reload.
package catalog
