package tables

import "testing"

func TestNewElementInstanceKey_Unique(t *testing.T) {
	a := NewElementInstanceKey()
	b := NewElementInstanceKey()
	if a == b {
		t.Fatalf("two consecutive keys collided: %d", a)
	}
	if a < 0 || b < 0 {
		t.Fatalf("keys must be non-negative, got %d and %d", a, b)
	}
}
