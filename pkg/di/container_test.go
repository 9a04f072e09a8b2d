package di

import (
	"path/filepath"
	"testing"

	"github.com/TitanUser/zeebedb/pkg/config"
)

func TestContainer_OpenAndClose(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")

	c := NewContainer()
	if err := c.Open(cfg); err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.Partition == nil || c.Registry == nil || c.Tables == nil {
		t.Fatal("expected container fields to be populated after Open")
	}
	if c.Metrics == nil || c.PromRegistry == nil {
		t.Fatal("expected Metrics and PromRegistry to be populated after Open")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestContainer_CloseWithoutOpenIsNoop(t *testing.T) {
	c := NewContainer()
	if err := c.Close(); err != nil {
		t.Fatalf("close on unopened container: %v", err)
	}
}
