// Package worker keeps the Google Sheets backup mirror in step with the
// ledger. Events arriving over AMQP trigger a re-mirror of the affected
// profile; a periodic full pass covers events lost while the worker was
// down.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rashidulhasanrafi/hisab/internal/amqp"
	"github.com/rashidulhasanrafi/hisab/internal/core"
	"github.com/rashidulhasanrafi/hisab/internal/ledger"
	"github.com/rashidulhasanrafi/hisab/internal/sheets"
	"github.com/rashidulhasanrafi/hisab/internal/storage"
)

type MirrorWorker struct {
	kv     storage.KV
	mirror sheets.LedgerMirror
}

func NewMirrorWorker(kv storage.KV, mirror sheets.LedgerMirror) *MirrorWorker {
	return &MirrorWorker{kv: kv, mirror: mirror}
}

// HandleLedgerEvent re-mirrors the profile named by the event. The message
// carries no payload beyond identifiers; the worker always reads current
// state from the KV store, so stale or reordered deliveries converge on the
// same result.
func (w *MirrorWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"kind", msg.Kind,
		"profile_id", msg.ProfileID,
		"ref_id", msg.RefID)

	profiles, err := ledger.LoadProfiles(ctx, w.kv)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	for _, p := range profiles {
		if p.ID != msg.ProfileID {
			continue
		}
		return w.mirrorProfile(ctx, p)
	}

	// The profile was deleted between publish and delivery. Nothing to
	// mirror; requeueing would never succeed.
	slog.WarnContext(ctx, "Ledger event for unknown profile, skipping",
		"kind", msg.Kind,
		"profile_id", msg.ProfileID)
	return nil
}

// MirrorAll re-mirrors every profile. Run at startup and on a timer to
// recover from missed events or worker downtime.
func (w *MirrorWorker) MirrorAll(ctx context.Context) error {
	profiles, err := ledger.LoadProfiles(ctx, w.kv)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	if len(profiles) == 0 {
		slog.InfoContext(ctx, "No profiles to mirror")
		return nil
	}

	mirrored := 0
	failed := 0
	for _, p := range profiles {
		if err := w.mirrorProfile(ctx, p); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror profile",
				"profile_id", p.ID, "error", err)
			failed++
			continue
		}
		mirrored++
	}

	slog.InfoContext(ctx, "Full mirror pass completed",
		"total", len(profiles),
		"mirrored", mirrored,
		"failed", failed)
	if failed > 0 {
		return fmt.Errorf("mirror pass: %d of %d profiles failed", failed, len(profiles))
	}
	return nil
}

// RunPeriodic blocks, running MirrorAll every interval until ctx is done.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.MirrorAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic mirror pass failed", "error", err)
			}
		}
	}
}

func (w *MirrorWorker) mirrorProfile(ctx context.Context, profile core.Profile) error {
	snap, err := ledger.LoadSnapshot(ctx, w.kv, profile)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if err := w.mirror.MirrorProfile(ctx, snap.Profile, snap.Currency, snap.Transactions, snap.Goals); err != nil {
		return fmt.Errorf("mirror profile %q: %w", profile.ID, err)
	}

	slog.InfoContext(ctx, "Profile mirrored",
		"profile_id", profile.ID,
		"transactions", len(snap.Transactions),
		"goals", len(snap.Goals))
	return nil
}
