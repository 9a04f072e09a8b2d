// Package tables implements the L4 state collections: typed views over one
// or more column families that enforce their own invariants and, for
// subscriptions, maintain a transient in-memory overlay alongside the
// durable column family. Every table is built from pkg/columnfamily,
// pkg/codec, pkg/fk and pkg/txn; nothing above this package touches raw
// bytes.
//
// A table's in-memory pending overlay (SubscriptionTable) is a different
// structure from the write-buffer overlay in pkg/txn: it survives across
// transactions for the life of the process and is rebuilt from the durable
// column family by Recover after a restart. Because its mutation must
// follow the same commit/abort fate as the enclosing transaction, tables
// that carry one stage their overlay edits and only apply them when the
// caller calls CommitOverlay/AbortOverlay alongside txn.Transaction's own
// Commit/Abort.
package tables
