package engine

import (
	"github.com/cockroachdb/errors"

	"github.com/TitanUser/zeebedb/pkg/codec"
)

// Adapter is the bottom-edge interface the substrate is built against. A
// concrete adapter owns one physical keyspace; CreateColumnFamily merely
// records a cf_id with the adapter rather than carving out a native column
// family, and no other operation checks that its cf was recorded (pebble has no native CF
// concept — every record lives in one keyspace prefixed by cf_id, per the
// persisted layout).
type Adapter interface {
	// CreateColumnFamily registers id as a known column family. Calling it
	// twice for the same id is a no-op.
	CreateColumnFamily(id codec.ID) error

	// Get returns the value stored at (cf, key), or (nil, false) if absent.
	Get(cf codec.ID, key []byte) ([]byte, bool, error)

	// Put writes value at (cf, key), overwriting any previous value.
	Put(cf codec.ID, key, value []byte) error

	// Delete removes (cf, key). Deleting an absent key is not an error.
	Delete(cf codec.ID, key []byte) error

	// Iterator returns a Cursor over cf starting at lowerBound (or the
	// first key in cf if lowerBound is nil).
	Iterator(cf codec.ID, lowerBound []byte) (Cursor, error)

	// NewBatch returns a write batch that can be applied atomically.
	NewBatch() Batch

	// Apply commits the accumulated writes in b atomically. sync controls
	// whether the engine's write-ahead log is flushed to stable storage
	// before Apply returns.
	Apply(b Batch, sync bool) error

	// Close releases the adapter's resources.
	Close() error
}

// Batch accumulates writes for atomic application via Adapter.Apply. It
// mirrors pebble's own Batch so Partition can delegate directly, but keeps
// the substrate's code free of a direct pebble import outside this package.
type Batch interface {
	Set(cf codec.ID, key, value []byte) error
	Delete(cf codec.ID, key []byte) error
	// Get observes this batch's own uncommitted writes layered over the
	// adapter's last-committed state, so a transaction can read back its
	// own writes before Apply.
	Get(cf codec.ID, key []byte) ([]byte, bool, error)
	Close() error
}

// Cursor iterates a column family's records in ascending encoded-key order.
type Cursor interface {
	SeekGE(key []byte) bool
	Next() bool
	Key() []byte
	Value() []byte
	Valid() bool
	Close() error
}

// EngineError wraps a failure reported by the underlying engine.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return "engine: " + e.Op + ": " + e.Err.Error()
}

func (e *EngineError) Unwrap() error { return e.Err }

func wrapEngineErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&EngineError{Op: op, Err: err})
}

// CorruptionError is raised by an adapter on startup when the durable store
// cannot be opened in a consistent state. It is never recoverable by the
// core; callers must fail the partition.
type CorruptionError struct {
	Path string
	Err  error
}

func (e *CorruptionError) Error() string {
	return "engine: corrupt store at " + e.Path + ": " + e.Err.Error()
}

func (e *CorruptionError) Unwrap() error { return e.Err }
