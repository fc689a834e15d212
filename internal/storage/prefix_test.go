package storage

import (
	"errors"
	"testing"
)

func TestPrefixDB_Namespaces(t *testing.T) {
	inner := NewMemory()
	ledgerNS := NewPrefixDB(inner, []byte("l/"))
	registryNS := NewPrefixDB(inner, []byte("r/"))

	if err := ledgerNS.Put([]byte("issued"), []byte{1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := registryNS.Put([]byte("issued"), []byte{2}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := ledgerNS.Get([]byte("issued"))
	if err != nil || got[0] != 1 {
		t.Fatalf("ledger Get = %v, %v; want [1]", got, err)
	}
	got, err = registryNS.Get([]byte("issued"))
	if err != nil || got[0] != 2 {
		t.Fatalf("registry Get = %v, %v; want [2]", got, err)
	}

	raw, err := inner.Get([]byte("l/issued"))
	if err != nil || raw[0] != 1 {
		t.Fatalf("inner key l/issued = %v, %v; want [1]", raw, err)
	}

	if err := ledgerNS.Delete([]byte("issued")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := ledgerNS.Has([]byte("issued")); ok {
		t.Error("deleted key still visible")
	}
	if _, err := ledgerNS.Get([]byte("issued")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if ok, _ := registryNS.Has([]byte("issued")); !ok {
		t.Error("delete leaked into another namespace")
	}
}

func TestPrefixDB_ForEachStripsPrefix(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("r/"))

	db.Put([]byte("h/a"), []byte("1"))
	db.Put([]byte("h/b"), []byte("2"))
	db.Put([]byte("o/c"), []byte("3"))
	inner.Put([]byte("h/outside"), []byte("4"))

	var keys []string
	err := db.ForEach([]byte("h/"), func(key, value []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(keys) != 2 || keys[0] != "h/a" || keys[1] != "h/b" {
		t.Fatalf("ForEach keys = %v, want [h/a h/b]", keys)
	}
}

func TestPrefixDB_OverTxStack(t *testing.T) {
	base := NewMemory()
	stack := NewTxStack(base)
	db := NewPrefixDB(stack, []byte("p/"))

	stack.Begin()
	db.Put([]byte("bal"), []byte("9"))
	if ok, _ := base.Has([]byte("p/bal")); ok {
		t.Fatal("write reached the base before commit")
	}
	if err := stack.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if ok, _ := base.Has([]byte("p/bal")); !ok {
		t.Fatal("committed write missing from the base")
	}
}

func TestPrefixDB_CloseIsNoop(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("x/"))
	db.Put([]byte("key"), []byte("val"))

	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := inner.Get([]byte("x/key")); err != nil {
		t.Fatalf("inner.Get after Close: %v", err)
	}
}
