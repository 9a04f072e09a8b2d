package fk

import (
	"fmt"

	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/metrics"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

// IntegrityError is returned when a write would reference a key absent
// from its foreign-key target column family.
type IntegrityError struct {
	SourceCF columnfamily.ID
	TargetCF columnfamily.ID
	Key      []byte
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"fk: write to cf %d references missing key %x in target cf %d",
		e.SourceCF, e.Key, e.TargetCF,
	)
}

// existsFunc reports whether encodedKey is present in a target column
// family, without needing to know its value type.
type existsFunc func(tx *txn.Transaction, encodedKey []byte) (bool, error)

// Checker enforces referential integrity between column families. It is a
// no-op unless Enabled, so a running partition that trusts its own writes
// pays nothing for it (the enable_preconditions flag, columnfamily.Options).
type Checker struct {
	Enabled bool
	targets map[columnfamily.ID]existsFunc
	metrics *metrics.Metrics
}

// NewChecker builds a Checker. enabled should come from
// columnfamily.Options.EnableConsistencyChecks.
func NewChecker(enabled bool) *Checker {
	return &Checker{Enabled: enabled, targets: make(map[columnfamily.ID]existsFunc)}
}

// SetMetrics attaches m so every rejected write is counted. Optional: a
// Checker with no metrics attached still enforces integrity, it just
// doesn't report violations.
func (c *Checker) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// Register tells the checker how to test key existence in targetCF. Table
// packages call this once per foreign key they declare, at setup time.
func Register[K any, V any](c *Checker, cf columnfamily.CF[K, V]) {
	c.targets[cf.ID()] = func(tx *txn.Transaction, encodedKey []byte) (bool, error) {
		key, err := cf.DecodeKey(encodedKey)
		if err != nil {
			return false, err
		}
		return cf.Exists(tx, key)
	}
}

// Assert checks that encodedKey exists in targetCF, returning an
// *IntegrityError if not. A no-op when the checker is disabled, or when
// targetCF was never registered (callers should always register FK
// targets; an unregistered target is treated as unchecked rather than a
// hard failure, so optional/partial wiring degrades gracefully).
func (c *Checker) Assert(tx *txn.Transaction, sourceCF, targetCF columnfamily.ID, encodedKey []byte) error {
	if !c.Enabled {
		return nil
	}
	check, ok := c.targets[targetCF]
	if !ok {
		return nil
	}
	exists, err := check(tx, encodedKey)
	if err != nil {
		return err
	}
	if !exists {
		if c.metrics != nil {
			c.metrics.RecordFKViolation()
		}
		return &IntegrityError{SourceCF: sourceCF, TargetCF: targetCF, Key: encodedKey}
	}
	return nil
}
