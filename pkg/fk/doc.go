// Package fk implements the optional foreign-key precondition check
// when enabled, a write that references
// another column family by key is rejected unless that key already exists
// in the target. Grounded on the existence-check-before-write pattern in
// _examples/hack2022p2t-tidb/executor/foreign_key.go, simplified to the
// single-process, single-partition setting this substrate runs in (no
// distributed two-phase check, no cascade).
package fk
