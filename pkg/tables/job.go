package tables

import (
	"github.com/TitanUser/zeebedb/pkg/codec"
	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/fk"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

// JobKey identifies a job by the element instance that owns it and its own
// per-element job id. JobTable mirrors TimerTable's shape exactly: a
// primary CF plus a deadline-ordered secondary index, since jobs carry the
// same "due at time T, scan for overdue work" access pattern as timers.
type JobKey struct {
	ElementInstanceKey int64
	JobKey             int64
}

// JobRecord is the durable value stored under a JobKey.
type JobRecord struct {
	ElementInstanceKey int64
	JobKey             int64
	Type               string
	Deadline           int64
}

func encodeJobKey(k JobKey) []byte {
	elem := codec.NewInt64Key(k.ElementInstanceKey)
	fk := codec.NewForeignKey(&elem, columnfamily.ElementInstances)
	jid := codec.NewInt64Key(k.JobKey)
	c := codec.NewComposite(fk, &jid)
	return c.Encode(nil)
}

func decodeJobKey(raw []byte) (JobKey, error) {
	var elem codec.Int64Key
	fk := codec.NewForeignKey(&elem, columnfamily.ElementInstances)
	var jid codec.Int64Key
	c := codec.NewComposite(fk, &jid)
	if _, err := c.Decode(raw); err != nil {
		return JobKey{}, err
	}
	return JobKey{ElementInstanceKey: elem.Value, JobKey: jid.Value}, nil
}

func encodeJobValue(r JobRecord) []byte {
	jobType := codec.NewStringValue(r.Type)
	deadline := codec.NewInt64Key(r.Deadline)
	c := codec.NewComposite(&jobType, &deadline)
	return c.Encode(nil)
}

func decodeJobValue(raw []byte) (JobRecord, error) {
	var jobType codec.StringValue
	var deadline codec.Int64Key
	c := codec.NewComposite(&jobType, &deadline)
	if _, err := c.Decode(raw); err != nil {
		return JobRecord{}, err
	}
	return JobRecord{Type: jobType.Value, Deadline: deadline.Value}, nil
}

type jobDeadlineKey struct {
	Deadline           int64
	ElementInstanceKey int64
	JobKey             int64
}

func encodeJobDeadlineKey(k jobDeadlineKey) []byte {
	deadline := codec.NewInt64Key(k.Deadline)
	elem := codec.NewInt64Key(k.ElementInstanceKey)
	jid := codec.NewInt64Key(k.JobKey)
	c := codec.NewComposite(&deadline, &elem, &jid)
	return c.Encode(nil)
}

func decodeJobDeadlineKey(raw []byte) (jobDeadlineKey, error) {
	var deadline, elem, jid codec.Int64Key
	c := codec.NewComposite(&deadline, &elem, &jid)
	if _, err := c.Decode(raw); err != nil {
		return jobDeadlineKey{}, err
	}
	return jobDeadlineKey{Deadline: deadline.Value, ElementInstanceKey: elem.Value, JobKey: jid.Value}, nil
}

// JobTable is the primary job CF plus the deadline-ordered secondary index
// maintained in lock-step with it.
type JobTable struct {
	primary  columnfamily.CF[JobKey, JobRecord]
	deadline columnfamily.CF[jobDeadlineKey, codec.NilValue]
	checker  *fk.Checker
}

// NewJobTable builds the table bound to columnfamily.Jobs and
// columnfamily.JobDeadlineIndex.
func NewJobTable() *JobTable {
	return &JobTable{
		primary: columnfamily.New(
			columnfamily.Jobs,
			encodeJobKey,
			decodeJobKey,
			encodeJobValue,
			decodeJobValue,
		),
		deadline: columnfamily.New(
			columnfamily.JobDeadlineIndex,
			encodeJobDeadlineKey,
			decodeJobDeadlineKey,
			encodeNil,
			decodeNil,
		),
	}
}

// CF exposes the primary handle so pkg/fk can register the element
// instance foreign key check against it.
func (t *JobTable) CF() columnfamily.CF[JobKey, JobRecord] { return t.primary }

func (t *JobTable) getPrimary(tx *txn.Transaction, key JobKey) (JobRecord, bool, error) {
	record, found, err := t.primary.Get(tx, key)
	if found {
		record.ElementInstanceKey = key.ElementInstanceKey
		record.JobKey = key.JobKey
	}
	return record, found, err
}

// Put writes job to both the primary CF and the deadline index within tx.
func (t *JobTable) Put(tx *txn.Transaction, job JobRecord) error {
	if t.checker != nil {
		elem := codec.NewInt64Key(job.ElementInstanceKey)
		if err := t.checker.Assert(tx, columnfamily.Jobs, columnfamily.ElementInstances, elem.Encode(nil)); err != nil {
			return err
		}
	}

	key := JobKey{ElementInstanceKey: job.ElementInstanceKey, JobKey: job.JobKey}
	if err := t.primary.Put(tx, key, job); err != nil {
		return err
	}
	idx := jobDeadlineKey{Deadline: job.Deadline, ElementInstanceKey: job.ElementInstanceKey, JobKey: job.JobKey}
	return t.deadline.Put(tx, idx, codec.NilValue{})
}

// Remove deletes the job identified by key from both CFs.
func (t *JobTable) Remove(tx *txn.Transaction, key JobKey) error {
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
	idx := jobDeadlineKey{Deadline: existing.Deadline, ElementInstanceKey: key.ElementInstanceKey, JobKey: key.JobKey}
	return t.deadline.Delete(tx, idx)
}

// FindOverdueBefore scans the deadline index in ascending order, the same
// consume/not-consume protocol as TimerTable.FindDueBefore.
func (t *JobTable) FindOverdueBefore(tx *txn.Transaction, now int64, visit func(JobRecord) bool) (int64, error) {
	nextDeadline := NoDueDate
	err := t.deadline.ForEach(tx, func(e columnfamily.Entry[jobDeadlineKey, codec.NilValue]) (bool, error) {
		if e.Key.Deadline > now {
			nextDeadline = e.Key.Deadline
			return false, nil
		}
		primaryKey := JobKey{ElementInstanceKey: e.Key.ElementInstanceKey, JobKey: e.Key.JobKey}
		record, found, err := t.getPrimary(tx, primaryKey)
		if err != nil {
			return false, err
		}
		if !found {
			return true, nil
		}
		if !visit(record) {
			nextDeadline = e.Key.Deadline
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return NoDueDate, err
	}
	return nextDeadline, nil
}

// ForEachForElement visits every job owned by elementInstanceKey, in
// ascending JobKey order.
func (t *JobTable) ForEachForElement(tx *txn.Transaction, elementInstanceKey int64, fn func(JobRecord) (bool, error)) error {
	prefix := codec.NewInt64Key(elementInstanceKey).Encode(nil)
	return t.primary.WhileEqualPrefix(tx, prefix, func(e columnfamily.Entry[JobKey, JobRecord]) (bool, error) {
		return fn(e.Value)
	})
}
