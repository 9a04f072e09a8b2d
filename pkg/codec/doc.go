// Package codec provides the typed key/value codec library for the
// column-family key-value substrate.
//
// Codecs are stateful buffer wrappers, not pure functions: a table holds a
// single instance per role and rebinds it around each key or value it
// handles. This allows zero-allocation encode/decode on the hot path at the
// cost of a strict contract: callers must not hold references to a codec's
// decoded output across the next mutating call on the same table.
//
// Every Codec is self-describing on decode (it reports how many bytes of
// the input buffer it consumed) so that composite keys can be built by
// concatenating sub-codecs without delimiters, and fixed-width integers are
// encoded big-endian so encoded order matches logical order.
package codec
