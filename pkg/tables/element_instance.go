package tables

import (
	"github.com/TitanUser/zeebedb/pkg/codec"
	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

// ElementInstanceKey identifies one running BPMN element instance.
type ElementInstanceKey = codec.Int64Key

// ElementInstanceRecord is the FK target every subscription and timer
// refers back to.
type ElementInstanceRecord struct {
	Key                int64
	ProcessInstanceKey int64
	ElementID          string
}

func encodeElementInstanceValue(r ElementInstanceRecord) []byte {
	processInstanceKey := codec.NewInt64Key(r.ProcessInstanceKey)
	elementID := codec.NewStringValue(r.ElementID)
	c := codec.NewComposite(&processInstanceKey, &elementID)
	return c.Encode(nil)
}

func decodeElementInstanceValue(raw []byte) (ElementInstanceRecord, error) {
	var processInstanceKey codec.Int64Key
	var elementID codec.StringValue
	c := codec.NewComposite(&processInstanceKey, &elementID)
	if _, err := c.Decode(raw); err != nil {
		return ElementInstanceRecord{}, err
	}
	return ElementInstanceRecord{
		ProcessInstanceKey: processInstanceKey.Value,
		ElementID:          elementID.Value,
	}, nil
}

// ElementInstanceTable hosts the CF whose keys are the target of every
// foreign-key reference from subscriptions, timers and jobs.
type ElementInstanceTable struct {
	cf columnfamily.CF[ElementInstanceKey, ElementInstanceRecord]
}

// NewElementInstanceTable builds the table bound to columnfamily.ElementInstances.
func NewElementInstanceTable() *ElementInstanceTable {
	return &ElementInstanceTable{
		cf: columnfamily.New(
			columnfamily.ElementInstances,
			func(k ElementInstanceKey) []byte { return k.Encode(nil) },
			func(raw []byte) (ElementInstanceKey, error) {
				var k codec.Int64Key
				_, err := k.Decode(raw)
				return k, err
			},
			encodeElementInstanceValue,
			decodeElementInstanceValue,
		),
	}
}

// CF exposes the underlying handle so pkg/fk can register it as an FK target.
func (t *ElementInstanceTable) CF() columnfamily.CF[ElementInstanceKey, ElementInstanceRecord] {
	return t.cf
}

// Put creates or replaces an element instance record.
func (t *ElementInstanceTable) Put(tx *txn.Transaction, r ElementInstanceRecord) error {
	return t.cf.Put(tx, codec.NewInt64Key(r.Key), r)
}

// Get returns the record for key, or ok=false if absent.
func (t *ElementInstanceTable) Get(tx *txn.Transaction, key int64) (ElementInstanceRecord, bool, error) {
	r, ok, err := t.cf.Get(tx, codec.NewInt64Key(key))
	if ok {
		r.Key = key
	}
	return r, ok, err
}

// Delete removes key. It does not check for timer, subscription or job rows
// that still refer to key, whether or not consistency checks are enabled
// (the fk.Checker only runs on writes into those tables), and it performs no
// cascade.
func (t *ElementInstanceTable) Delete(tx *txn.Transaction, key int64) error {
	return t.cf.Delete(tx, codec.NewInt64Key(key))
}

// ElementInstanceKeyPrefix returns the encoded prefix shared by every row
// (in subscriptions, timers, jobs) keyed by element instance key, since the
// ForeignKey wrapper is byte-identical to its inner codec. Used for prefix
// scans that want every row belonging to one element instance.
func ElementInstanceKeyPrefix(key int64) []byte {
	k := codec.NewInt64Key(key)
	return k.Encode(nil)
}
