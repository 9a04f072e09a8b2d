package columnfamily

import (
	"github.com/cockroachdb/errors"

	"github.com/TitanUser/zeebedb/pkg/codec"
	"github.com/TitanUser/zeebedb/pkg/engine"
)

// ID identifies a column family. Assignments below are schema: they are
// listed once and must never be renumbered or reused across versions.
type ID = codec.ID

// Column family assignments for the L4 tables built on this substrate.
// Grouped by table the way _examples/AKJUS-bsc-erigon/erigon-lib/kv/tables.go
// groups its bucket constants by subsystem.
const (
	// Subscriptions: the primary table. SubscriptionsPending is declared but
	// holds no records; the pending overlay lives in memory in
	// tables.SubscriptionTable.
	Subscriptions ID = iota + 1
	SubscriptionsPending

	// Timers: the primary table plus the due-date secondary index.
	Timers
	TimerDueIndex

	// Jobs: mirrors the timer table's shape.
	Jobs
	JobDeadlineIndex

	// ElementInstances: the FK target every other table above points at.
	ElementInstances
)

// Options configures process-wide registry behavior.
type Options struct {
	// EnableConsistencyChecks turns on foreign-key assertion at write time
	// (the enable_preconditions configuration flag). Off by default: a
	// running engine has already validated its own writes, so re-checking
	// every FK on every write is pure overhead in production; it earns its
	// keep in tests and during development.
	EnableConsistencyChecks bool
}

// Registry tracks every column family an engine instance knows about and
// exposes disk-usage statistics for the metrics layer.
type Registry struct {
	adapter engine.Adapter
	opts    Options
	known   map[ID]string
}

// NewRegistry creates a registry bound to adapter. Call Declare for each
// column family a table package defines before using it.
func NewRegistry(adapter engine.Adapter, opts Options) *Registry {
	return &Registry{adapter: adapter, opts: opts, known: make(map[ID]string)}
}

// Declare registers id under name, creating it on the adapter if needed.
// Declaring the same id twice with a different name is a programming error.
func (r *Registry) Declare(id ID, name string) error {
	if existing, ok := r.known[id]; ok && existing != name {
		return errors.Newf("columnfamily: id %d already declared as %q, cannot redeclare as %q", id, existing, name)
	}
	if err := r.adapter.CreateColumnFamily(id); err != nil {
		return errors.Wrapf(err, "columnfamily: declare %s", name)
	}
	r.known[id] = name
	return nil
}

// Options returns the registry's configured Options.
func (r *Registry) Options() Options { return r.opts }

// Adapter returns the underlying engine adapter, for packages (fk, tables)
// that need to open transactions directly against it.
func (r *Registry) Adapter() engine.Adapter { return r.adapter }

// Stat reports the name and estimated on-disk size of every declared
// column family, for the metrics layer's gauge exporter.
type Stat struct {
	ID       ID
	Name     string
	DiskSize uint64
}

// diskUsageEstimator is implemented by engine.Partition; adapters that
// don't support estimation (e.g. a test fake) simply report zero.
type diskUsageEstimator interface {
	EstimateDiskUsage(cf ID) (uint64, error)
}

// Stats returns a Stat for every declared column family.
func (r *Registry) Stats() ([]Stat, error) {
	estimator, ok := r.adapter.(diskUsageEstimator)
	stats := make([]Stat, 0, len(r.known))
	for id, name := range r.known {
		var size uint64
		if ok {
			var err error
			size, err = estimator.EstimateDiskUsage(id)
			if err != nil {
				return nil, errors.Wrapf(err, "columnfamily: stat %s", name)
			}
		}
		stats = append(stats, Stat{ID: id, Name: name, DiskSize: size})
	}
	return stats, nil
}
