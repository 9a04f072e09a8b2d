// Package txn implements the transactional overlay: an ordered in-memory
// write-buffer layered over an engine.Adapter's last-committed state. Reads
// check the overlay first and fall through to the adapter; Commit applies
// the overlay as one engine.Batch; Abort discards it. Transactions are not
// safe for concurrent use — one transaction per partition at a time.
//
// This is distinct from the process-lifetime pending overlay some L4
// tables keep (see pkg/tables/doc.go): that overlay survives across many
// transactions, this one lives and dies with a single one.
package txn
