// Package backup implements full-dump export and restore of the tracker's
// key-value state. An export is a single JSON object mapping every
// recognized storage key to its raw value; a restore wholesale-replaces
// matching keys and nothing else.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rashidulhasanrafi/hisab/internal/ledger"
	"github.com/rashidulhasanrafi/hisab/internal/storage"
)

// ErrUnrecognizedBackup is returned when an uploaded file contains no key
// with a recognized prefix. Nothing is imported in that case.
var ErrUnrecognizedBackup = errors.New("backup contains no recognized keys")

// Export dumps every recognized key into one JSON object.
func Export(ctx context.Context, kv storage.KV) ([]byte, error) {
	keys, err := kv.Keys(ctx, "hisab_")
	if err != nil {
		return nil, fmt.Errorf("enumerate keys: %w", err)
	}

	dump := make(map[string]string, len(keys))
	for _, k := range keys {
		if !recognized(k) {
			continue
		}
		v, ok, err := kv.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", k, err)
		}
		if ok {
			dump[k] = v
		}
	}

	out, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}

	slog.InfoContext(ctx, "Backup exported", "keys", len(dump))
	return out, nil
}

// Import validates and restores a backup produced by Export. The file must
// be a JSON object of string keys to string values containing at least one
// recognized key; otherwise nothing is written and existing state is left
// untouched. Recognized keys are replaced wholesale, unrecognized keys in
// the file are ignored. Callers must fully reload in-memory state after a
// successful import.
func Import(ctx context.Context, kv storage.KV, data []byte) error {
	var dump map[string]string
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("parse backup: %w", err)
	}

	matched := make(map[string]string, len(dump))
	for k, v := range dump {
		if recognized(k) {
			matched[k] = v
		}
	}
	if len(matched) == 0 {
		return ErrUnrecognizedBackup
	}

	for k, v := range matched {
		if err := kv.Set(ctx, k, v); err != nil {
			return fmt.Errorf("restore %q: %w", k, err)
		}
	}

	slog.InfoContext(ctx, "Backup imported",
		"restored", len(matched), "ignored", len(dump)-len(matched))
	return nil
}

func recognized(key string) bool {
	for _, p := range ledger.RecognizedPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
