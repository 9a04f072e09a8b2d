package engine

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"github.com/TitanUser/zeebedb/pkg/codec"
)

// cfIDLen is the width of the big-endian cf_id prefix in the persisted
// layout.
const cfIDLen = 8

// physicalKey returns cf_id(8, BE) || key, the bit-exact persisted layout.
func physicalKey(cf codec.ID, key []byte) []byte {
	out := make([]byte, cfIDLen+len(key))
	binary.BigEndian.PutUint64(out[:cfIDLen], uint64(cf))
	copy(out[cfIDLen:], key)
	return out
}

// Partition is the pebble-backed Adapter implementation: one pebble
// instance per workflow-engine partition.
type Partition struct {
	mu   sync.Mutex
	db   *pebble.DB
	path string
	cfs  map[codec.ID]struct{}
}

// OpenPartition opens (creating if absent) a pebble instance rooted at dir.
func OpenPartition(dir string) (*Partition, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &CorruptionError{Path: dir, Err: err}
		}
		return nil, wrapEngineErr("open", err)
	}
	return &Partition{db: db, path: dir, cfs: make(map[codec.ID]struct{})}, nil
}

// CreateColumnFamily implements Adapter.
func (p *Partition) CreateColumnFamily(id codec.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfs[id] = struct{}{}
	return nil
}

// Get implements Adapter.
func (p *Partition) Get(cf codec.ID, key []byte) ([]byte, bool, error) {
	value, closer, err := p.db.Get(physicalKey(cf, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapEngineErr("get", err)
	}
	defer closer.Close()
	out := append([]byte(nil), value...)
	return out, true, nil
}

// Put implements Adapter.
func (p *Partition) Put(cf codec.ID, key, value []byte) error {
	if err := p.db.Set(physicalKey(cf, key), value, pebble.Sync); err != nil {
		return wrapEngineErr("put", err)
	}
	return nil
}

// Delete implements Adapter.
func (p *Partition) Delete(cf codec.ID, key []byte) error {
	if err := p.db.Delete(physicalKey(cf, key), pebble.Sync); err != nil {
		return wrapEngineErr("delete", err)
	}
	return nil
}

// Iterator implements Adapter.
func (p *Partition) Iterator(cf codec.ID, lowerBound []byte) (Cursor, error) {
	prefixedLower := physicalKey(cf, lowerBound)
	upper := cfUpperBound(cf)
	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: prefixedLower, UpperBound: upper})
	if err != nil {
		return nil, wrapEngineErr("iterator", err)
	}
	return &pebbleCursor{it: it, cf: cf}, nil
}

// cfUpperBound returns the exclusive upper bound of cf's keyspace: the
// physical key of the next cf_id with an empty key suffix.
func cfUpperBound(cf codec.ID) []byte {
	out := make([]byte, cfIDLen)
	binary.BigEndian.PutUint64(out, uint64(cf)+1)
	return out
}

// NewBatch implements Adapter.
func (p *Partition) NewBatch() Batch {
	return &pebbleBatch{batch: p.db.NewIndexedBatch(), db: p.db}
}

// Apply implements Adapter.
func (p *Partition) Apply(b Batch, sync bool) error {
	pb, ok := b.(*pebbleBatch)
	if !ok {
		return errors.Newf("engine: Apply called with foreign batch type %T", b)
	}
	opts := pebble.NoSync
	if sync {
		opts = pebble.Sync
	}
	if err := p.db.Apply(pb.batch, opts); err != nil {
		return wrapEngineErr("apply", err)
	}
	return nil
}

// Close implements Adapter.
func (p *Partition) Close() error {
	if err := p.db.Close(); err != nil {
		return wrapEngineErr("close", err)
	}
	return nil
}

// EstimateDiskUsage reports the approximate on-disk size of cf, used by
// columnfamily.Registry.Stats.
func (p *Partition) EstimateDiskUsage(cf codec.ID) (uint64, error) {
	lower := physicalKey(cf, nil)
	upper := cfUpperBound(cf)
	size, err := p.db.EstimateDiskUsage(lower, upper)
	if err != nil {
		return 0, wrapEngineErr("estimate-disk-usage", err)
	}
	return size, nil
}

type pebbleCursor struct {
	it  *pebble.Iterator
	cf  codec.ID
	key []byte
}

func (c *pebbleCursor) SeekGE(key []byte) bool {
	return c.it.SeekGE(physicalKey(c.cf, key))
}

func (c *pebbleCursor) Next() bool {
	return c.it.Next()
}

func (c *pebbleCursor) Key() []byte {
	return c.it.Key()[cfIDLen:]
}

func (c *pebbleCursor) Value() []byte {
	return c.it.Value()
}

func (c *pebbleCursor) Valid() bool {
	return c.it.Valid()
}

func (c *pebbleCursor) Close() error {
	return c.it.Close()
}

type pebbleBatch struct {
	batch *pebble.Batch
	db    *pebble.DB
}

func (b *pebbleBatch) Set(cf codec.ID, key, value []byte) error {
	if err := b.batch.Set(physicalKey(cf, key), value, nil); err != nil {
		return wrapEngineErr("batch-set", err)
	}
	return nil
}

func (b *pebbleBatch) Delete(cf codec.ID, key []byte) error {
	if err := b.batch.Delete(physicalKey(cf, key), nil); err != nil {
		return wrapEngineErr("batch-delete", err)
	}
	return nil
}

func (b *pebbleBatch) Get(cf codec.ID, key []byte) ([]byte, bool, error) {
	value, closer, err := b.batch.Get(physicalKey(cf, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapEngineErr("batch-get", err)
	}
	defer closer.Close()
	return append([]byte(nil), value...), true, nil
}

func (b *pebbleBatch) Close() error {
	if err := b.batch.Close(); err != nil {
		return wrapEngineErr("batch-close", err)
	}
	return nil
}
