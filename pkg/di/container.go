// Package di wires the substrate's concrete dependencies together: opening
// the pebble-backed partition, declaring column families, building the
// table family, and handing the result to whichever command needs it.
package di

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/config"
	"github.com/TitanUser/zeebedb/pkg/engine"
	"github.com/TitanUser/zeebedb/pkg/metrics"
	"github.com/TitanUser/zeebedb/pkg/tables"
)

// Container holds the constructed substrate dependencies for one process.
type Container struct {
	Partition    *engine.Partition
	Registry     *columnfamily.Registry
	Tables       *tables.Tables
	Config       *config.Config
	Metrics      *metrics.Metrics
	PromRegistry *prometheus.Registry
}

// NewContainer creates an empty container. Call Open to materialize the
// substrate once a Config is available.
func NewContainer() *Container {
	return &Container{}
}

// Open opens the pebble partition at cfg.DataDir, declares every column
// family, builds the table family, and runs recovery.
func (c *Container) Open(cfg *config.Config) error {
	partition, err := engine.OpenPartition(cfg.DataDir)
	if err != nil {
		return errors.Wrap(err, "di: open partition")
	}

	reg := columnfamily.NewRegistry(partition, columnfamily.Options{
		EnableConsistencyChecks: cfg.EnablePreconditions,
	})

	tbls, err := tables.Open(reg)
	if err != nil {
		partition.Close()
		return errors.Wrap(err, "di: open tables")
	}

	if err := tbls.Recover(partition); err != nil {
		partition.Close()
		return errors.Wrap(err, "di: recover tables")
	}

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	tbls.Checker.SetMetrics(m)

	c.Partition = partition
	c.Registry = reg
	c.Tables = tbls
	c.Config = cfg
	c.Metrics = m
	c.PromRegistry = promReg
	return nil
}

// Close releases the underlying partition.
func (c *Container) Close() error {
	if c.Partition == nil {
		return nil
	}
	return c.Partition.Close()
}
