package tables

import (
	"testing"

	"github.com/TitanUser/zeebedb/pkg/codec"
	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/engine"
	"github.com/TitanUser/zeebedb/pkg/fk"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

func elementPrefix(key int64) []byte {
	return codec.NewInt64Key(key).Encode(nil)
}

func openTestTables(t *testing.T, opts columnfamily.Options) (*Tables, engine.Adapter) {
	t.Helper()
	partition, err := engine.OpenPartition(t.TempDir())
	if err != nil {
		t.Fatalf("open partition: %v", err)
	}
	t.Cleanup(func() { partition.Close() })

	reg := columnfamily.NewRegistry(partition, opts)
	tbls, err := Open(reg)
	if err != nil {
		t.Fatalf("open tables: %v", err)
	}
	return tbls, partition
}

// Scenario 1: timer scheduling with an always-consuming visitor.
func TestTimerTable_FindDueBefore_ConsumingVisitor(t *testing.T) {
	tbls, adapter := openTestTables(t, columnfamily.Options{})

	tx := txn.New(adapter)
	mustPutElementInstance(t, tbls, tx, 1)
	mustPutTimer(t, tbls, tx, 1, 10, 100)
	mustPutTimer(t, tbls, tx, 1, 11, 200)
	if err := tx.Commit(false); err != nil {
		t.Fatal(err)
	}

	tx = txn.New(adapter)
	var visited []int64
	nextDue, err := tbls.Timers.FindDueBefore(tx, 150, func(r TimerRecord) bool {
		visited = append(visited, r.DueDate)
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(visited) != 1 || visited[0] != 100 {
		t.Fatalf("visited %v, want exactly [100]", visited)
	}
	if nextDue != 200 {
		t.Fatalf("nextDue = %d, want 200", nextDue)
	}
}

// Scenario 2: timer scheduling with a never-consuming visitor.
func TestTimerTable_FindDueBefore_NonConsumingVisitor(t *testing.T) {
	tbls, adapter := openTestTables(t, columnfamily.Options{})

	tx := txn.New(adapter)
	mustPutElementInstance(t, tbls, tx, 1)
	mustPutTimer(t, tbls, tx, 1, 10, 100)
	mustPutTimer(t, tbls, tx, 1, 11, 200)
	if err := tx.Commit(false); err != nil {
		t.Fatal(err)
	}

	tx = txn.New(adapter)
	var first *int64
	nextDue, err := tbls.Timers.FindDueBefore(tx, 250, func(r TimerRecord) bool {
		if first == nil {
			due := r.DueDate
			first = &due
		}
		return false
	})
	if err != nil {
		t.Fatal(err)
	}
	if first == nil || *first != 100 {
		t.Fatalf("first visited due = %v, want 100", first)
	}
	if nextDue != 100 {
		t.Fatalf("nextDue = %d, want 100", nextDue)
	}
}

// Scenario 3: subscription lifecycle and pending overlay visibility.
func TestSubscriptionTable_Lifecycle(t *testing.T) {
	tbls, adapter := openTestTables(t, columnfamily.Options{})
	key := SubscriptionKey{ElementInstanceKey: 5, MessageName: "M"}

	tx := txn.New(adapter)
	mustPutElementInstance(t, tbls, tx, 5)
	if err := tbls.Subscriptions.Put(tx, key); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(false); err != nil {
		t.Fatal(err)
	}
	tbls.Subscriptions.CommitOverlay(tx)

	tx = txn.New(adapter)
	if err := tbls.Subscriptions.TransitionToOpened(tx, key); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(false); err != nil {
		t.Fatal(err)
	}
	tbls.Subscriptions.CommitOverlay(tx)

	var seen int
	tbls.Subscriptions.VisitPendingBefore(1<<62, func(SubscriptionKey, int64) bool { seen++; return true })
	if seen != 0 {
		t.Fatalf("after transition to opened, pending count = %d, want 0", seen)
	}

	tx = txn.New(adapter)
	if err := tbls.Subscriptions.TransitionToClosing(tx, key, 42); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(false); err != nil {
		t.Fatal(err)
	}
	tbls.Subscriptions.CommitOverlay(tx)

	seen = 0
	tbls.Subscriptions.VisitPendingBefore(1<<62, func(k SubscriptionKey, sentTime int64) bool {
		seen++
		if k != key || sentTime != 42 {
			t.Fatalf("got (%v, %d), want (%v, 42)", k, sentTime, key)
		}
		return true
	})
	if seen != 1 {
		t.Fatalf("after transition to closing, pending count = %d, want 1", seen)
	}
}

// Scenario 4: prefix scan over subscriptions for one element instance.
func TestSubscriptionTable_PrefixScan(t *testing.T) {
	tbls, adapter := openTestTables(t, columnfamily.Options{})

	tx := txn.New(adapter)
	mustPutElementInstance(t, tbls, tx, 7)
	mustPutElementInstance(t, tbls, tx, 9)
	for _, k := range []SubscriptionKey{
		{ElementInstanceKey: 7, MessageName: "A"},
		{ElementInstanceKey: 7, MessageName: "B"},
		{ElementInstanceKey: 9, MessageName: "A"},
	} {
		if err := tbls.Subscriptions.Put(tx, k); err != nil {
			t.Fatal(err)
		}
	}
	if err := tx.Commit(false); err != nil {
		t.Fatal(err)
	}

	tx = txn.New(adapter)
	var names []string
	err := tbls.Subscriptions.CF().WhileEqualPrefix(tx, elementPrefix(7), func(e columnfamily.Entry[SubscriptionKey, SubscriptionRecord]) (bool, error) {
		names = append(names, e.Key.MessageName)
		return true, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Fatalf("got %v, want [A B]", names)
	}
}

// Scenario 5: FK integrity rejects a timer referencing a missing element instance.
func TestTimerTable_FKIntegrityRejectsMissingElement(t *testing.T) {
	tbls, adapter := openTestTables(t, columnfamily.Options{EnableConsistencyChecks: true})

	tx := txn.New(adapter)
	err := tbls.Timers.Put(tx, TimerRecord{ElementInstanceKey: 42, TimerKey: 1, DueDate: 100})
	if _, ok := err.(*fk.IntegrityError); !ok {
		t.Fatalf("got %v, want *fk.IntegrityError", err)
	}

	if _, found, getErr := tbls.Timers.CF().Get(tx, TimerKey{ElementInstanceKey: 42, TimerKey: 1}); getErr != nil || found {
		t.Fatalf("timer should not have been written, found=%v err=%v", found, getErr)
	}
	tx.Abort()
}

// Scenario 6: crash/recovery fidelity for the subscription pending overlay.
func TestSubscriptionTable_RecoveryRebuildsOverlay(t *testing.T) {
	dir := t.TempDir()
	partition, err := engine.OpenPartition(dir)
	if err != nil {
		t.Fatal(err)
	}
	reg := columnfamily.NewRegistry(partition, columnfamily.Options{})
	tbls, err := Open(reg)
	if err != nil {
		t.Fatal(err)
	}

	key := SubscriptionKey{ElementInstanceKey: 3, MessageName: "X"}
	tx := txn.New(partition)
	mustPutElementInstance(t, tbls, tx, 3)
	if err := tbls.Subscriptions.Put(tx, key); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(false); err != nil {
		t.Fatal(err)
	}
	// Deliberately do not call CommitOverlay, simulating a crash before the
	// in-memory overlay mutation would have been applied.
	partition.Close()

	restarted, err := engine.OpenPartition(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { restarted.Close() })
	reg2 := columnfamily.NewRegistry(restarted, columnfamily.Options{})
	tbls2, err := Open(reg2)
	if err != nil {
		t.Fatal(err)
	}
	if err := tbls2.Recover(restarted); err != nil {
		t.Fatal(err)
	}

	var seen int
	tbls2.Subscriptions.VisitPendingBefore(1<<62, func(k SubscriptionKey, sentTime int64) bool {
		seen++
		if k != key || sentTime != 0 {
			t.Fatalf("got (%v, %d), want (%v, 0)", k, sentTime, key)
		}
		return true
	})
	if seen != 1 {
		t.Fatalf("pending count after recovery = %d, want 1", seen)
	}
}

func mustPutElementInstance(t *testing.T, tbls *Tables, tx *txn.Transaction, key int64) {
	t.Helper()
	if err := tbls.ElementInstances.Put(tx, ElementInstanceRecord{Key: key, ElementID: "task"}); err != nil {
		t.Fatal(err)
	}
}

func mustPutTimer(t *testing.T, tbls *Tables, tx *txn.Transaction, elem, timerID, due int64) {
	t.Helper()
	if err := tbls.Timers.Put(tx, TimerRecord{ElementInstanceKey: elem, TimerKey: timerID, DueDate: due}); err != nil {
		t.Fatal(err)
	}
}
