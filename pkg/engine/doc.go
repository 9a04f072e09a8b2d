// Package engine adapts the column-family substrate to a concrete embedded
// LSM-style key-value engine. Everything above this package talks to
// Adapter and Cursor, never to pebble directly.
//
// Partition is the only implementation shipped here, backed by
// github.com/cockroachdb/pebble, opening exactly one *pebble.DB per
// instance and adding the column-family prefixing, batches, and cursors
// the layers above need. It takes no snapshots: reads see the latest
// committed state.
package engine
