package tables

import (
	"github.com/TitanUser/zeebedb/pkg/codec"
	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/fk"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

// NoDueDate is the sentinel FindDueBefore returns when no timer is
// pending. Exported rather than left as a bare -1 literal so callers don't
// need to know the magic value to compare against it.
const NoDueDate int64 = -1

// TimerKey identifies a timer by the element instance that owns it and its
// own per-element timer id.
type TimerKey struct {
	ElementInstanceKey int64
	TimerKey           int64
}

// TimerRecord is the durable value stored under a TimerKey.
type TimerRecord struct {
	ElementInstanceKey int64
	TimerKey           int64
	DueDate            int64
}

func encodeTimerKey(k TimerKey) []byte {
	elem := codec.NewInt64Key(k.ElementInstanceKey)
	fk := codec.NewForeignKey(&elem, columnfamily.ElementInstances)
	tid := codec.NewInt64Key(k.TimerKey)
	c := codec.NewComposite(fk, &tid)
	return c.Encode(nil)
}

func decodeTimerKey(raw []byte) (TimerKey, error) {
	var elem codec.Int64Key
	fk := codec.NewForeignKey(&elem, columnfamily.ElementInstances)
	var tid codec.Int64Key
	c := codec.NewComposite(fk, &tid)
	if _, err := c.Decode(raw); err != nil {
		return TimerKey{}, err
	}
	return TimerKey{ElementInstanceKey: elem.Value, TimerKey: tid.Value}, nil
}

func encodeTimerValue(r TimerRecord) []byte {
	due := codec.NewInt64Key(r.DueDate)
	return due.Encode(nil)
}

func decodeTimerValue(raw []byte) (TimerRecord, error) {
	var due codec.Int64Key
	if _, err := due.Decode(raw); err != nil {
		return TimerRecord{}, err
	}
	return TimerRecord{DueDate: due.Value}, nil
}

// dueIndexKey is the secondary-index key: composite(due_date, primary_key).
type dueIndexKey struct {
	DueDate            int64
	ElementInstanceKey int64
	TimerKey           int64
}

func encodeDueIndexKey(k dueIndexKey) []byte {
	due := codec.NewInt64Key(k.DueDate)
	elem := codec.NewInt64Key(k.ElementInstanceKey)
	tid := codec.NewInt64Key(k.TimerKey)
	c := codec.NewComposite(&due, &elem, &tid)
	return c.Encode(nil)
}

func decodeDueIndexKey(raw []byte) (dueIndexKey, error) {
	var due, elem, tid codec.Int64Key
	c := codec.NewComposite(&due, &elem, &tid)
	if _, err := c.Decode(raw); err != nil {
		return dueIndexKey{}, err
	}
	return dueIndexKey{DueDate: due.Value, ElementInstanceKey: elem.Value, TimerKey: tid.Value}, nil
}

func encodeNil(codec.NilValue) []byte { return nil }

func decodeNil([]byte) (codec.NilValue, error) { return codec.NilValue{}, nil }

// TimerTable is the primary timer CF plus the due-date secondary index CF
// maintained in lock-step with it.
type TimerTable struct {
	primary  columnfamily.CF[TimerKey, TimerRecord]
	dueIndex columnfamily.CF[dueIndexKey, codec.NilValue]
	checker  *fk.Checker
}

// NewTimerTable builds the table bound to columnfamily.Timers and
// columnfamily.TimerDueIndex.
func NewTimerTable() *TimerTable {
	return &TimerTable{
		primary: columnfamily.New(
			columnfamily.Timers,
			encodeTimerKey,
			decodeTimerKey,
			encodeTimerValue,
			decodeTimerValue,
		),
		dueIndex: columnfamily.New(
			columnfamily.TimerDueIndex,
			encodeDueIndexKey,
			decodeDueIndexKey,
			encodeNil,
			decodeNil,
		),
	}
}

// CF exposes the primary handle so pkg/fk can register the element
// instance foreign key check against it.
func (t *TimerTable) CF() columnfamily.CF[TimerKey, TimerRecord] { return t.primary }

func (t *TimerTable) getPrimary(tx *txn.Transaction, key TimerKey) (TimerRecord, bool, error) {
	record, found, err := t.primary.Get(tx, key)
	if found {
		record.ElementInstanceKey = key.ElementInstanceKey
		record.TimerKey = key.TimerKey
	}
	return record, found, err
}

// Put writes timer to both the primary CF and the due-date index within tx.
func (t *TimerTable) Put(tx *txn.Transaction, timer TimerRecord) error {
	if t.checker != nil {
		elem := codec.NewInt64Key(timer.ElementInstanceKey)
		if err := t.checker.Assert(tx, columnfamily.Timers, columnfamily.ElementInstances, elem.Encode(nil)); err != nil {
			return err
		}
	}

	key := TimerKey{ElementInstanceKey: timer.ElementInstanceKey, TimerKey: timer.TimerKey}
	if err := t.primary.Put(tx, key, timer); err != nil {
		return err
	}
	idx := dueIndexKey{DueDate: timer.DueDate, ElementInstanceKey: timer.ElementInstanceKey, TimerKey: timer.TimerKey}
	return t.dueIndex.Put(tx, idx, codec.NilValue{})
}

// Remove deletes the timer identified by key from both CFs.
func (t *TimerTable) Remove(tx *txn.Transaction, key TimerKey) error {
	existing, found, err := t.getPrimary(tx, key)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if err := t.primary.Delete(tx, key); err != nil {
		return err
	}
	idx := dueIndexKey{DueDate: existing.DueDate, ElementInstanceKey: key.ElementInstanceKey, TimerKey: key.TimerKey}
	return t.dueIndex.Delete(tx, idx)
}

// FindDueBefore scans the due-date index in ascending order. For each entry
// with DueDate <= now it resolves the primary record and calls visit; if
// visit returns false the entry was not consumed and scanning stops,
// returning that entry's due date as the next wake-up hint. If every
// visited entry up to now is consumed and a later entry exists, its due
// date is returned. NoDueDate is returned when nothing is pending.
func (t *TimerTable) FindDueBefore(tx *txn.Transaction, now int64, visit func(TimerRecord) bool) (int64, error) {
	nextDue := NoDueDate
	err := t.dueIndex.ForEach(tx, func(e columnfamily.Entry[dueIndexKey, codec.NilValue]) (bool, error) {
		if e.Key.DueDate > now {
			nextDue = e.Key.DueDate
			return false, nil
		}
		primaryKey := TimerKey{ElementInstanceKey: e.Key.ElementInstanceKey, TimerKey: e.Key.TimerKey}
		record, found, err := t.getPrimary(tx, primaryKey)
		if err != nil {
			return false, err
		}
		if !found {
			// Index and primary disagree; treat as already removed and move on.
			return true, nil
		}
		if !visit(record) {
			nextDue = e.Key.DueDate
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return NoDueDate, err
	}
	return nextDue, nil
}

// ForEachForElement visits every timer owned by elementInstanceKey, in
// ascending TimerKey order, via a whileEqualPrefix scan of the primary CF.
func (t *TimerTable) ForEachForElement(tx *txn.Transaction, elementInstanceKey int64, fn func(TimerRecord) (bool, error)) error {
	prefix := codec.NewInt64Key(elementInstanceKey).Encode(nil)
	return t.primary.WhileEqualPrefix(tx, prefix, func(e columnfamily.Entry[TimerKey, TimerRecord]) (bool, error) {
		return fn(e.Value)
	})
}
