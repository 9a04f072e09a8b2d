package engine_test

import (
	"testing"

	"github.com/TitanUser/zeebedb/pkg/codec"
	"github.com/TitanUser/zeebedb/pkg/engine"
)

func TestPartition_PutGetDelete(t *testing.T) {
	p, err := engine.OpenPartition(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	const cf codec.ID = 1
	if err := p.CreateColumnFamily(cf); err != nil {
		t.Fatal(err)
	}

	if err := p.Put(cf, []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	value, ok, err := p.Get(cf, []byte("k"))
	if err != nil || !ok || string(value) != "v" {
		t.Fatalf("got (%q, %v, %v), want (v, true, nil)", value, ok, err)
	}

	if err := p.Delete(cf, []byte("k")); err != nil {
		t.Fatal(err)
	}
	_, ok, err = p.Get(cf, []byte("k"))
	if err != nil || ok {
		t.Fatalf("expected absent after delete, got ok=%v err=%v", ok, err)
	}
}

func TestPartition_ColumnFamiliesAreIsolated(t *testing.T) {
	p, err := engine.OpenPartition(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if err := p.Put(1, []byte("k"), []byte("cf1")); err != nil {
		t.Fatal(err)
	}
	if err := p.Put(2, []byte("k"), []byte("cf2")); err != nil {
		t.Fatal(err)
	}

	v1, _, _ := p.Get(1, []byte("k"))
	v2, _, _ := p.Get(2, []byte("k"))
	if string(v1) != "cf1" || string(v2) != "cf2" {
		t.Fatalf("got cf1=%q cf2=%q, want distinct per column family", v1, v2)
	}
}

func TestPartition_BatchApplyIsAtomic(t *testing.T) {
	p, err := engine.OpenPartition(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	batch := p.NewBatch()
	if err := batch.Set(1, []byte("a"), []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := batch.Set(1, []byte("b"), []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := p.Apply(batch, true); err != nil {
		t.Fatal(err)
	}

	for k, want := range map[string]string{"a": "1", "b": "2"} {
		v, ok, err := p.Get(1, []byte(k))
		if err != nil || !ok || string(v) != want {
			t.Fatalf("key %q: got (%q, %v), want (%q, true)", k, v, ok, want)
		}
	}
}

func TestPartition_IteratorAscendingOrderWithinColumnFamily(t *testing.T) {
	p, err := engine.OpenPartition(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	for _, k := range []string{"c", "a", "b"} {
		if err := p.Put(1, []byte(k), []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	// A record in a different column family must never interleave with cf 1.
	if err := p.Put(2, []byte("a"), []byte("other")); err != nil {
		t.Fatal(err)
	}

	cur, err := p.Iterator(1, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close()

	var got []string
	for ok := cur.SeekGE(nil); ok; ok = cur.Next() {
		got = append(got, string(cur.Key()))
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("got %v, want [a b c]", got)
	}
}
