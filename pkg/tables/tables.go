package tables

import (
	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/engine"
	"github.com/TitanUser/zeebedb/pkg/fk"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

// Tables bundles every L4 table an engine instance needs, plus the
// process-wide foreign-key checker that guards writes into them.
type Tables struct {
	ElementInstances *ElementInstanceTable
	Subscriptions    *SubscriptionTable
	Timers           *TimerTable
	Jobs             *JobTable
	Checker          *fk.Checker
}

// Open declares every column family on reg and wires up the foreign-key
// checker. Call Recover once on startup before serving traffic.
func Open(reg *columnfamily.Registry) (*Tables, error) {
	t := &Tables{
		ElementInstances: NewElementInstanceTable(),
		Subscriptions:    NewSubscriptionTable(),
		Timers:           NewTimerTable(),
		Jobs:             NewJobTable(),
		Checker:          fk.NewChecker(reg.Options().EnableConsistencyChecks),
	}

	declarations := []struct {
		id   columnfamily.ID
		name string
	}{
		{columnfamily.ElementInstances, "element_instances"},
		{columnfamily.Subscriptions, "subscriptions"},
		{columnfamily.SubscriptionsPending, "subscriptions_pending"},
		{columnfamily.Timers, "timers"},
		{columnfamily.TimerDueIndex, "timer_due_index"},
		{columnfamily.Jobs, "jobs"},
		{columnfamily.JobDeadlineIndex, "job_deadline_index"},
	}
	for _, d := range declarations {
		if err := reg.Declare(d.id, d.name); err != nil {
			return nil, err
		}
	}

	fk.Register(t.Checker, t.ElementInstances.CF())
	t.Subscriptions.checker = t.Checker
	t.Timers.checker = t.Checker
	t.Jobs.checker = t.Checker
	return t, nil
}

// Recover runs every table's recovery pass against a single read-only
// transaction over adapter, rebuilding in-memory overlays to what they
// would have held had no crash occurred.
func (t *Tables) Recover(adapter engine.Adapter) error {
	tx := txn.New(adapter)
	defer tx.Abort()
	return t.Subscriptions.Recover(tx)
}
