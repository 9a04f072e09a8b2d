package tables

import (
	"github.com/TitanUser/zeebedb/pkg/codec"
	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/fk"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

// SubscriptionState is the subscription lifecycle state.
type SubscriptionState int64

const (
	Opening SubscriptionState = iota
	Opened
	Closing
	Closed
)

func (s SubscriptionState) String() string {
	switch s {
	case Opening:
		return "OPENING"
	case Opened:
		return "OPENED"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// SubscriptionKey identifies a subscription by the element instance that
// owns it and the message it is waiting on.
type SubscriptionKey struct {
	ElementInstanceKey int64
	MessageName        string
}

// SubscriptionRecord is the durable value stored under a SubscriptionKey.
type SubscriptionRecord struct {
	ElementInstanceKey int64
	MessageName        string
	State              SubscriptionState
	CommandSentTime    int64
}

func encodeSubscriptionKey(k SubscriptionKey) []byte {
	elem := codec.NewInt64Key(k.ElementInstanceKey)
	fk := codec.NewForeignKey(&elem, columnfamily.ElementInstances)
	msg := codec.NewStringValue(k.MessageName)
	c := codec.NewComposite(fk, &msg)
	return c.Encode(nil)
}

func decodeSubscriptionKey(raw []byte) (SubscriptionKey, error) {
	var elem codec.Int64Key
	fk := codec.NewForeignKey(&elem, columnfamily.ElementInstances)
	var msg codec.StringValue
	c := codec.NewComposite(fk, &msg)
	if _, err := c.Decode(raw); err != nil {
		return SubscriptionKey{}, err
	}
	return SubscriptionKey{ElementInstanceKey: elem.Value, MessageName: msg.Value}, nil
}

func encodeSubscriptionValue(r SubscriptionRecord) []byte {
	state := codec.NewInt64Key(int64(r.State))
	sentTime := codec.NewInt64Key(r.CommandSentTime)
	c := codec.NewComposite(&state, &sentTime)
	return c.Encode(nil)
}

func decodeSubscriptionValue(raw []byte) (SubscriptionRecord, error) {
	var state codec.Int64Key
	var sentTime codec.Int64Key
	c := codec.NewComposite(&state, &sentTime)
	if _, err := c.Decode(raw); err != nil {
		return SubscriptionRecord{}, err
	}
	return SubscriptionRecord{State: SubscriptionState(state.Value), CommandSentTime: sentTime.Value}, nil
}

// pendingEntry is one row of the subscription table's in-memory overlay,
// ordered by (CommandSentTime, ElementInstanceKey, MessageName).
type pendingEntry struct {
	CommandSentTime    int64
	ElementInstanceKey int64
	MessageName        string
}

func (a pendingEntry) less(b pendingEntry) bool {
	if a.CommandSentTime != b.CommandSentTime {
		return a.CommandSentTime < b.CommandSentTime
	}
	if a.ElementInstanceKey != b.ElementInstanceKey {
		return a.ElementInstanceKey < b.ElementInstanceKey
	}
	return a.MessageName < b.MessageName
}

type overlayOpKind int

const (
	overlayAdd overlayOpKind = iota
	overlayRemove
)

type overlayOp struct {
	kind  overlayOpKind
	entry pendingEntry
}

// SubscriptionTable is the durable subscription CF plus the process-
// lifetime pending overlay of Opening/Closing subscriptions.
type SubscriptionTable struct {
	cf      columnfamily.CF[SubscriptionKey, SubscriptionRecord]
	pending []pendingEntry // kept sorted by pendingEntry.less
	staged  map[*txn.Transaction][]overlayOp
	checker *fk.Checker
}

// NewSubscriptionTable builds the table bound to columnfamily.Subscriptions.
func NewSubscriptionTable() *SubscriptionTable {
	return &SubscriptionTable{
		cf: columnfamily.New(
			columnfamily.Subscriptions,
			encodeSubscriptionKey,
			decodeSubscriptionKey,
			encodeSubscriptionValue,
			decodeSubscriptionValue,
		),
		staged: make(map[*txn.Transaction][]overlayOp),
	}
}

// CF exposes the underlying handle so pkg/fk can register the element
// instance foreign key check against it.
func (t *SubscriptionTable) CF() columnfamily.CF[SubscriptionKey, SubscriptionRecord] {
	return t.cf
}

func (t *SubscriptionTable) stage(tx *txn.Transaction, op overlayOp) {
	t.staged[tx] = append(t.staged[tx], op)
}

// Put creates or replaces a subscription in the Opening state, per the
// state diagram: put on an existing row replaces it and re-inserts it into
// the overlay.
func (t *SubscriptionTable) Put(tx *txn.Transaction, key SubscriptionKey) error {
	if t.checker != nil {
		elem := codec.NewInt64Key(key.ElementInstanceKey)
		if err := t.checker.Assert(tx, columnfamily.Subscriptions, columnfamily.ElementInstances, elem.Encode(nil)); err != nil {
			return err
		}
	}

	record := SubscriptionRecord{
		ElementInstanceKey: key.ElementInstanceKey,
		MessageName:        key.MessageName,
		State:              Opening,
		CommandSentTime:    0,
	}

	existing, found, err := t.cf.Get(tx, key)
	if err != nil {
		return err
	}
	if found && (existing.State == Opening || existing.State == Closing) {
		t.stage(tx, overlayOp{kind: overlayRemove, entry: pendingEntry{
			CommandSentTime:    existing.CommandSentTime,
			ElementInstanceKey: key.ElementInstanceKey,
			MessageName:        key.MessageName,
		}})
	}

	if err := t.cf.Put(tx, key, record); err != nil {
		return err
	}
	t.stage(tx, overlayOp{kind: overlayAdd, entry: pendingEntry{
		CommandSentTime:    0,
		ElementInstanceKey: key.ElementInstanceKey,
		MessageName:        key.MessageName,
	}})
	return nil
}

// TransitionToOpened durably marks the subscription Opened and removes its
// overlay entry. A missing subscription is a silent no-op: the source this
// table is modeled on treats update-of-absent the same way, and the
// specification preserves that observed behavior rather than escalating it.
func (t *SubscriptionTable) TransitionToOpened(tx *txn.Transaction, key SubscriptionKey) error {
	existing, found, err := t.cf.Get(tx, key)
	if err != nil || !found {
		return err
	}
	t.stage(tx, overlayOp{kind: overlayRemove, entry: pendingEntry{
		CommandSentTime:    existing.CommandSentTime,
		ElementInstanceKey: key.ElementInstanceKey,
		MessageName:        key.MessageName,
	}})
	existing.State = Opened
	return t.cf.Put(tx, key, existing)
}

// TransitionToClosing durably marks the subscription Closing and inserts a
// fresh overlay entry with sentTime. Same silent-no-op rule as
// TransitionToOpened applies when the row is absent.
func (t *SubscriptionTable) TransitionToClosing(tx *txn.Transaction, key SubscriptionKey, sentTime int64) error {
	existing, found, err := t.cf.Get(tx, key)
	if err != nil || !found {
		return err
	}
	if existing.State == Opening || existing.State == Closing {
		t.stage(tx, overlayOp{kind: overlayRemove, entry: pendingEntry{
			CommandSentTime:    existing.CommandSentTime,
			ElementInstanceKey: key.ElementInstanceKey,
			MessageName:        key.MessageName,
		}})
	}
	existing.State = Closing
	existing.CommandSentTime = sentTime
	if err := t.cf.Put(tx, key, existing); err != nil {
		return err
	}
	t.stage(tx, overlayOp{kind: overlayAdd, entry: pendingEntry{
		CommandSentTime:    sentTime,
		ElementInstanceKey: key.ElementInstanceKey,
		MessageName:        key.MessageName,
	}})
	return nil
}

// Remove durably deletes the subscription and removes its overlay entry if
// one is pending.
func (t *SubscriptionTable) Remove(tx *txn.Transaction, key SubscriptionKey) error {
	existing, found, err := t.cf.Get(tx, key)
	if err != nil {
		return err
	}
	if found && (existing.State == Opening || existing.State == Closing) {
		t.stage(tx, overlayOp{kind: overlayRemove, entry: pendingEntry{
			CommandSentTime:    existing.CommandSentTime,
			ElementInstanceKey: key.ElementInstanceKey,
			MessageName:        key.MessageName,
		}})
	}
	return t.cf.Delete(tx, key)
}

// UpdateSentTime moves a pending subscription's overlay key to a fresh
// CommandSentTime, leaving the durable value's own CommandSentTime in sync.
func (t *SubscriptionTable) UpdateSentTime(tx *txn.Transaction, key SubscriptionKey, sentTime int64) error {
	existing, found, err := t.cf.Get(tx, key)
	if err != nil || !found {
		return err
	}
	if existing.State != Opening && existing.State != Closing {
		return nil
	}
	t.stage(tx, overlayOp{kind: overlayRemove, entry: pendingEntry{
		CommandSentTime:    existing.CommandSentTime,
		ElementInstanceKey: key.ElementInstanceKey,
		MessageName:        key.MessageName,
	}})
	existing.CommandSentTime = sentTime
	if err := t.cf.Put(tx, key, existing); err != nil {
		return err
	}
	t.stage(tx, overlayOp{kind: overlayAdd, entry: pendingEntry{
		CommandSentTime:    sentTime,
		ElementInstanceKey: key.ElementInstanceKey,
		MessageName:        key.MessageName,
	}})
	return nil
}

// CommitOverlay applies tx's staged overlay mutations to the pending
// overlay. Call this after tx.Commit succeeds.
func (t *SubscriptionTable) CommitOverlay(tx *txn.Transaction) {
	ops := t.staged[tx]
	delete(t.staged, tx)
	for _, op := range ops {
		switch op.kind {
		case overlayAdd:
			t.insertPending(op.entry)
		case overlayRemove:
			t.removePending(op.entry)
		}
	}
}

// AbortOverlay discards tx's staged overlay mutations. Call this instead of
// CommitOverlay when tx.Abort is called.
func (t *SubscriptionTable) AbortOverlay(tx *txn.Transaction) {
	delete(t.staged, tx)
}

func (t *SubscriptionTable) insertPending(e pendingEntry) {
	i := 0
	for i < len(t.pending) && t.pending[i].less(e) {
		i++
	}
	t.pending = append(t.pending, pendingEntry{})
	copy(t.pending[i+1:], t.pending[i:])
	t.pending[i] = e
}

// removePending drops the overlay entry of e's subscription. It matches on
// (ElementInstanceKey, MessageName) only, since the overlay holds at most one
// entry per subscription and that entry's CommandSentTime can differ from the
// durable row's (Recover reinserts every entry at 0).
func (t *SubscriptionTable) removePending(e pendingEntry) {
	for i, p := range t.pending {
		if p.ElementInstanceKey == e.ElementInstanceKey && p.MessageName == e.MessageName {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

// VisitPendingBefore enumerates overlay entries with CommandSentTime <=
// deadline, oldest first, until visit returns false.
func (t *SubscriptionTable) VisitPendingBefore(deadline int64, visit func(SubscriptionKey, int64) bool) {
	for _, e := range t.pending {
		if e.CommandSentTime > deadline {
			return
		}
		if !visit(SubscriptionKey{ElementInstanceKey: e.ElementInstanceKey, MessageName: e.MessageName}, e.CommandSentTime) {
			return
		}
	}
}

// Recover rebuilds the pending overlay from the durable CF: every row in
// Opening or Closing state is reinserted with CommandSentTime reset to 0,
// whatever CommandSentTime the durable row itself records.
func (t *SubscriptionTable) Recover(tx *txn.Transaction) error {
	t.pending = nil
	return t.cf.ForEach(tx, func(e columnfamily.Entry[SubscriptionKey, SubscriptionRecord]) (bool, error) {
		if e.Value.State == Opening || e.Value.State == Closing {
			t.insertPending(pendingEntry{
				CommandSentTime:    0,
				ElementInstanceKey: e.Key.ElementInstanceKey,
				MessageName:        e.Key.MessageName,
			})
		}
		return true, nil
	})
}
