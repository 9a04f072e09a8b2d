package columnfamily

import (
	"github.com/cockroachdb/errors"

	"github.com/TitanUser/zeebedb/pkg/txn"
)

// CF is a typed handle onto one column family: a stable id plus the
// encode/decode pair for its key and value types. Table packages build one
// CF per column family they own and never touch raw bytes directly.
//
// K and V are left as plain type parameters rather than constrained to a
// shared Codec interface because key codecs (composite keys, prefix keys)
// and value codecs decode into freshly allocated values of possibly
// different shapes; a constructor function is the simplest way to hand back
// a fresh K or V without reflection.
type CF[K any, V any] struct {
	id ID

	encodeKey func(K) []byte
	decodeKey func([]byte) (K, error)
	encodeVal func(V) []byte
	decodeVal func([]byte) (V, error)
}

// New builds a CF handle bound to id, using encodeKey/decodeKey and
// encodeVal/decodeVal to move between the table's domain types and the
// engine's byte-oriented storage.
func New[K any, V any](
	id ID,
	encodeKey func(K) []byte,
	decodeKey func([]byte) (K, error),
	encodeVal func(V) []byte,
	decodeVal func([]byte) (V, error),
) CF[K, V] {
	return CF[K, V]{
		id:        id,
		encodeKey: encodeKey,
		decodeKey: decodeKey,
		encodeVal: encodeVal,
		decodeVal: decodeVal,
	}
}

// ID returns the column family's stable identifier.
func (cf CF[K, V]) ID() ID { return cf.id }

// DecodeKey decodes raw bytes back into K, for callers (pkg/fk) that only
// have an encoded key on hand.
func (cf CF[K, V]) DecodeKey(raw []byte) (K, error) { return cf.decodeKey(raw) }

// Put writes (key, value) within tx.
func (cf CF[K, V]) Put(tx *txn.Transaction, key K, value V) error {
	return tx.Put(cf.id, cf.encodeKey(key), cf.encodeVal(value))
}

// Get returns the value at key, or ok=false if absent.
func (cf CF[K, V]) Get(tx *txn.Transaction, key K) (value V, ok bool, err error) {
	raw, found, err := tx.Get(cf.id, cf.encodeKey(key))
	if err != nil || !found {
		return value, false, err
	}
	value, err = cf.decodeVal(raw)
	if err != nil {
		return value, false, errors.Wrapf(err, "columnfamily: decode value for cf %d", cf.id)
	}
	return value, true, nil
}

// Exists reports whether key has a value in tx.
func (cf CF[K, V]) Exists(tx *txn.Transaction, key K) (bool, error) {
	return tx.Exists(cf.id, cf.encodeKey(key))
}

// Delete removes key. Deleting an absent key is not an error.
func (cf CF[K, V]) Delete(tx *txn.Transaction, key K) error {
	return tx.Delete(cf.id, cf.encodeKey(key))
}

// Entry is one decoded (key, value) pair observed during a scan.
type Entry[K any, V any] struct {
	Key   K
	Value V
}

// WhileEqualPrefix scans every entry whose encoded key starts with the
// bytes produced by encodePrefix, invoking fn in ascending key order until
// fn returns false or the prefix is exhausted.
func (cf CF[K, V]) WhileEqualPrefix(tx *txn.Transaction, prefix []byte, fn func(Entry[K, V]) (bool, error)) error {
	var fnErr error
	err := tx.IterPrefix(cf.id, prefix, func(e txn.IterEntry) bool {
		key, err := cf.decodeKey(e.Key)
		if err != nil {
			fnErr = errors.Wrapf(err, "columnfamily: decode key for cf %d", cf.id)
			return false
		}
		value, err := cf.decodeVal(e.Value)
		if err != nil {
			fnErr = errors.Wrapf(err, "columnfamily: decode value for cf %d", cf.id)
			return false
		}
		cont, err := fn(Entry[K, V]{Key: key, Value: value})
		if err != nil {
			fnErr = err
			return false
		}
		return cont
	})
	if err != nil {
		return err
	}
	return fnErr
}

// ForEach scans the entire column family in ascending key order.
func (cf CF[K, V]) ForEach(tx *txn.Transaction, fn func(Entry[K, V]) (bool, error)) error {
	return cf.WhileEqualPrefix(tx, nil, fn)
}
