package txn

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/TitanUser/zeebedb/pkg/codec"
	"github.com/TitanUser/zeebedb/pkg/engine"
)

// ErrAborted is returned by any operation attempted on a transaction that
// has already committed or aborted.
var ErrAborted = errors.New("txn: transaction already closed")

// MetricsRecorder is the subset of *metrics.Metrics a Transaction needs to
// report commit/abort outcomes. Declared here instead of importing
// pkg/metrics directly: pkg/metrics imports pkg/columnfamily, and
// pkg/columnfamily imports pkg/txn, so a direct import would close a cycle.
type MetricsRecorder interface {
	RecordTxnOperation(operation string, success bool, duration time.Duration)
	RecordCommit(committed bool)
}

// Transaction is a single logical unit of work against one engine.Adapter.
// All reads observe this transaction's own uncommitted writes layered over
// the adapter's last-committed state (read-your-own-writes); nothing is
// visible to any other transaction, and no other transaction may run
// concurrently against the same adapter, matching the single-threaded-per-
// partition model.
type Transaction struct {
	adapter engine.Adapter
	ov      *overlay
	closed  bool
	metrics MetricsRecorder
}

// New opens a transaction against adapter. Kept as a free function rather
// than an Adapter.BeginTransaction method so engine stays ignorant of txn:
// only txn imports engine, never the reverse.
func New(adapter engine.Adapter) *Transaction {
	return &Transaction{adapter: adapter, ov: newOverlay()}
}

// NewWithMetrics opens a transaction like New, but also reports Commit and
// Abort outcomes to m. Callers that already hold a *metrics.Metrics (the
// CLI commands and the admin API, both via their container) should prefer
// this constructor.
func NewWithMetrics(adapter engine.Adapter, m MetricsRecorder) *Transaction {
	t := New(adapter)
	t.metrics = m
	return t
}

func (t *Transaction) checkOpen() error {
	if t.closed {
		return ErrAborted
	}
	return nil
}

// Get returns the value at (cf, key) as it appears at this point in the
// transaction: the overlay's pending write if one exists (including a
// pending delete, which reads as absent), otherwise the adapter's
// last-committed value.
func (t *Transaction) Get(cf codec.ID, key []byte) ([]byte, bool, error) {
	if err := t.checkOpen(); err != nil {
		return nil, false, err
	}
	pk := physicalKey(cf, key)
	if value, deleted, found := t.ov.get(pk); found {
		if deleted {
			return nil, false, nil
		}
		return value, true, nil
	}
	return t.adapter.Get(cf, key)
}

// Exists reports whether (cf, key) has a visible value in this transaction.
func (t *Transaction) Exists(cf codec.ID, key []byte) (bool, error) {
	_, ok, err := t.Get(cf, key)
	return ok, err
}

// Put stages a write. It is not visible to the adapter or any other
// transaction until Commit.
func (t *Transaction) Put(cf codec.ID, key, value []byte) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	t.ov.set(physicalKey(cf, key), value)
	return nil
}

// Delete stages a tombstone for (cf, key).
func (t *Transaction) Delete(cf codec.ID, key []byte) error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	t.ov.delete(physicalKey(cf, key))
	return nil
}

// IterEntry is one record observed while iterating a key-prefix range,
// merging the overlay's pending writes with the adapter's committed state.
type IterEntry struct {
	Key   []byte
	Value []byte
}

// IterPrefix invokes fn for every (key, value) in cf whose key starts with
// prefix, in ascending encoded-key order, merging this transaction's
// pending writes over the adapter's committed records. Iteration stops
// early if fn returns false. Pending deletes suppress the corresponding
// committed record; pending writes shadow it.
func (t *Transaction) IterPrefix(cf codec.ID, prefix []byte, fn func(IterEntry) bool) error {
	if err := t.checkOpen(); err != nil {
		return err
	}

	cur, err := t.adapter.Iterator(cf, prefix)
	if err != nil {
		return errors.Wrap(err, "txn: iterate committed state")
	}
	defer cur.Close()

	type merged struct {
		key     []byte
		value   []byte
		deleted bool
	}
	var pending []merged
	physPrefix := physicalKey(cf, prefix)
	t.ov.forEachPrefix(physPrefix, func(e overlayEntry) bool {
		pending = append(pending, merged{key: e.key[8:], value: e.value, deleted: e.deleted})
		return true
	})

	pi := 0
	advancePending := func() (merged, bool) {
		if pi >= len(pending) {
			return merged{}, false
		}
		m := pending[pi]
		pi++
		return m, true
	}

	nextPending, havePending := advancePending()
	haveCommitted := cur.SeekGE(prefix)

	for haveCommitted || havePending {
		var commKey []byte
		if haveCommitted {
			commKey = cur.Key()
			if !hasPrefix(commKey, prefix) {
				haveCommitted = false
				commKey = nil
			}
		}
		if !haveCommitted && !havePending {
			break
		}

		switch {
		case haveCommitted && (!havePending || lessBytes(commKey, nextPending.key)):
			if !fn(IterEntry{Key: append([]byte(nil), commKey...), Value: append([]byte(nil), cur.Value()...)}) {
				return nil
			}
			haveCommitted = cur.Next()
		case havePending && (!haveCommitted || lessBytes(nextPending.key, commKey)):
			if !nextPending.deleted {
				if !fn(IterEntry{Key: nextPending.key, Value: nextPending.value}) {
					return nil
				}
			}
			nextPending, havePending = advancePending()
		default:
			// equal keys: overlay wins, committed cursor advances too.
			if !nextPending.deleted {
				if !fn(IterEntry{Key: nextPending.key, Value: nextPending.value}) {
					return nil
				}
			}
			nextPending, havePending = advancePending()
			haveCommitted = cur.Next()
		}
	}
	return nil
}

// Commit applies the staged writes atomically via the adapter's batch and
// marks the transaction closed. sync controls whether the underlying write
// is fsynced before Commit returns (config.SyncOnCommit).
func (t *Transaction) Commit(sync bool) (err error) {
	if err = t.checkOpen(); err != nil {
		return err
	}
	t.closed = true

	start := time.Now()
	defer func() {
		if t.metrics != nil {
			t.metrics.RecordTxnOperation("commit", err == nil, time.Since(start))
			t.metrics.RecordCommit(true)
		}
	}()

	if len(t.ov.entries) == 0 {
		return nil
	}

	batch := t.adapter.NewBatch()
	defer batch.Close()

	for _, e := range t.ov.entries {
		cf, key := splitPhysicalKey(e.key)
		if e.deleted {
			if err = batch.Delete(cf, key); err != nil {
				return errors.Wrap(err, "txn: stage delete")
			}
			continue
		}
		if err = batch.Set(cf, key, e.value); err != nil {
			return errors.Wrap(err, "txn: stage put")
		}
	}

	if err = t.adapter.Apply(batch, sync); err != nil {
		return errors.Wrap(err, "txn: commit")
	}
	return nil
}

// Abort discards all staged writes. Safe to call on a transaction that was
// never written to.
func (t *Transaction) Abort() {
	if t.metrics != nil {
		t.metrics.RecordTxnOperation("abort", true, 0)
		t.metrics.RecordCommit(false)
	}
	t.closed = true
	t.ov = nil
}

func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}

func lessBytes(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func splitPhysicalKey(pk []byte) (codec.ID, []byte) {
	var id uint64
	for i := 0; i < 8; i++ {
		id = id<<8 | uint64(pk[i])
	}
	return codec.ID(id), pk[8:]
}
