package memory

import (
	"context"
	"testing"
)

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	kv := New()

	if _, ok, _ := kv.Get(ctx, "missing"); ok {
		t.Fatal("missing key reported as present")
	}

	if err := kv.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := kv.Get(ctx, "a")
	if err != nil || !ok || v != "1" {
		t.Fatalf("get = %q %v %v", v, ok, err)
	}

	if err := kv.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "a"); ok {
		t.Fatal("deleted key still present")
	}
	// Deleting a missing key is fine.
	if err := kv.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestKeysPrefix(t *testing.T) {
	ctx := context.Background()
	kv := NewFromMap(map[string]string{
		"hisab_transactions_p1": "[]",
		"hisab_transactions_p2": "[]",
		"hisab_goals_p1":        "[]",
		"other":                 "x",
	})

	keys, err := kv.Keys(ctx, "hisab_transactions_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "hisab_transactions_p1" || keys[1] != "hisab_transactions_p2" {
		t.Fatalf("keys = %v", keys)
	}

	all, _ := kv.Keys(ctx, "")
	if len(all) != 4 {
		t.Fatalf("all keys = %v", all)
	}
}
