package txn

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/exp/slices"

	"github.com/TitanUser/zeebedb/pkg/codec"
)

// overlayEntry is one pending write. deleted marks a tombstone so a
// transaction-local read of a since-deleted key correctly observes absence
// instead of falling through to the adapter's last-committed value.
type overlayEntry struct {
	key     []byte // cf_id(8, BE) || encoded key, see physicalKey
	value   []byte
	deleted bool
}

// overlay is an ordered, slice-backed write buffer. Slice-backed rather than
// a hash map because IterPrefix must walk entries in encoded-key order, and
// the overlay is expected to stay small relative to a full scan of the
// underlying column family within one transaction's lifetime.
type overlay struct {
	entries []overlayEntry
}

func newOverlay() *overlay {
	return &overlay{}
}

func (o *overlay) find(key []byte) (int, bool) {
	return slices.BinarySearchFunc(o.entries, key, func(e overlayEntry, k []byte) int {
		return bytes.Compare(e.key, k)
	})
}

// get returns (value, deleted, found). found is false when key has no
// pending write at all, meaning the caller must fall through to the adapter.
func (o *overlay) get(key []byte) ([]byte, bool, bool) {
	i, ok := o.find(key)
	if !ok {
		return nil, false, false
	}
	e := o.entries[i]
	return e.value, e.deleted, true
}

func (o *overlay) set(key, value []byte) {
	i, ok := o.find(key)
	entry := overlayEntry{key: append([]byte(nil), key...), value: append([]byte(nil), value...)}
	if ok {
		o.entries[i] = entry
		return
	}
	o.entries = slices.Insert(o.entries, i, entry)
}

func (o *overlay) delete(key []byte) {
	i, ok := o.find(key)
	entry := overlayEntry{key: append([]byte(nil), key...), deleted: true}
	if ok {
		o.entries[i] = entry
		return
	}
	o.entries = slices.Insert(o.entries, i, entry)
}

// forEachPrefix walks the overlay's pending writes whose physical key starts
// with prefix, in ascending order, invoking fn until it returns false.
func (o *overlay) forEachPrefix(prefix []byte, fn func(entry overlayEntry) bool) {
	i, _ := o.find(prefix)
	for ; i < len(o.entries); i++ {
		e := o.entries[i]
		if !bytes.HasPrefix(e.key, prefix) {
			return
		}
		if !fn(e) {
			return
		}
	}
}

func physicalKey(cf codec.ID, key []byte) []byte {
	out := make([]byte, 8+len(key))
	binary.BigEndian.PutUint64(out[:8], uint64(cf))
	copy(out[8:], key)
	return out
}
