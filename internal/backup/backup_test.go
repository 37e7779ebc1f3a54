package backup

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rashidulhasanrafi/hisab/internal/storage/memory"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := memory.NewFromMap(map[string]string{
		"hisab_profiles":          `[{"id":"p1","name":"Personal"}]`,
		"hisab_active_profile_id": "p1",
		"hisab_transactions_p1":   `[{"id":"t1","amount":"10","type":"EXPENSE"}]`,
		"hisab_currency_p1":       "BDT",
	})

	data, err := Export(ctx, src)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := memory.New()
	if err := Import(ctx, dst, data); err != nil {
		t.Fatalf("import: %v", err)
	}

	for _, key := range []string{"hisab_profiles", "hisab_active_profile_id", "hisab_transactions_p1", "hisab_currency_p1"} {
		want, _, _ := src.Get(ctx, key)
		got, ok, _ := dst.Get(ctx, key)
		if !ok || got != want {
			t.Fatalf("key %q: got %q want %q", key, got, want)
		}
	}
}

func TestImportRejectsUnrecognizedFile(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewFromMap(map[string]string{
		"hisab_currency_p1": "BDT",
	})

	payload, _ := json.Marshal(map[string]string{
		"some_other_app_key": "x",
		"random":             "y",
	})
	err := Import(ctx, kv, payload)
	if !errors.Is(err, ErrUnrecognizedBackup) {
		t.Fatalf("got %v, want ErrUnrecognizedBackup", err)
	}

	// Existing state untouched.
	if v, _, _ := kv.Get(ctx, "hisab_currency_p1"); v != "BDT" {
		t.Fatalf("existing state modified: %q", v)
	}
	if kv.Len() != 1 {
		t.Fatalf("keys written on rejected import: %d", kv.Len())
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	kv := memory.New()
	if err := Import(context.Background(), kv, []byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
	if kv.Len() != 0 {
		t.Fatal("keys written on malformed import")
	}
}

func TestImportIgnoresUnrecognizedKeysButRestoresMatches(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	payload, _ := json.Marshal(map[string]string{
		"hisab_currency_p9": "EUR",
		"junk_key":          "ignored",
	})
	if err := Import(ctx, kv, payload); err != nil {
		t.Fatalf("import: %v", err)
	}
	if v, ok, _ := kv.Get(ctx, "hisab_currency_p9"); !ok || v != "EUR" {
		t.Fatalf("recognized key not restored: %q", v)
	}
	if _, ok, _ := kv.Get(ctx, "junk_key"); ok {
		t.Fatal("unrecognized key restored")
	}
}
