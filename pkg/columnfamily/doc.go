// Package columnfamily defines the disjoint-keyspace abstraction the
// substrate is built on: a small stable integer id, a key codec, a value
// codec, and the scan primitives tables are built from: WhileEqualPrefix,
// and ForEach as the unrestricted whileTrue scan.
//
// cf_id assignments are schema: they are listed once in registry.go and
// must never be renumbered or reused across versions, mirroring the stable
// bucket-name lists in _examples/AKJUS-bsc-erigon/erigon-lib/kv/tables.go.
package columnfamily
