package state

import (
	"testing"

	"contribledger/storage"
)

func TestKVGetMissing(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	var out uint64
	ok, err := m.KVGet([]byte("missing"), &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected missing key")
	}
}

func TestKVRoundTrip(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	type record struct {
		Name string `json:"name"`
		Cost uint64 `json:"cost"`
	}
	if err := m.KVPut([]byte("opt"), record{Name: "supplier_discount", Cost: 100}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got record
	ok, err := m.KVGet([]byte("opt"), &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got.Name != "supplier_discount" || got.Cost != 100 {
		t.Fatalf("unexpected record %+v (ok=%v)", got, ok)
	}
}

func TestKVAppendDeduplicates(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	key := []byte("accounts")
	for _, member := range []string{"alpha", "beta", "alpha"} {
		if err := m.KVAppend(key, member); err != nil {
			t.Fatalf("append %q: %v", member, err)
		}
	}
	var list []string
	if err := m.KVGetList(key, &list); err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(list) != 2 || list[0] != "alpha" || list[1] != "beta" {
		t.Fatalf("unexpected list %v", list)
	}
}
