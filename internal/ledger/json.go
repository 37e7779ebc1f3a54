package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rashidulhasanrafi/hisab/internal/storage"
)

// loadJSON reads key and unmarshals it into a fresh T. A missing key or
// corrupt JSON yields the fallback: no partial-record recovery is
// attempted, matching the per-key reset behavior of the original store.
func loadJSON[T any](ctx context.Context, kv storage.KV, key string, fallback T) (T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return fallback, fmt.Errorf("load %q: %w", key, err)
	}
	if !ok {
		return fallback, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		slog.WarnContext(ctx, "Corrupt value replaced with default",
			"key", key, "error", err)
		return fallback, nil
	}
	return v, nil
}

func saveJSON(ctx context.Context, kv storage.KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}
