package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rashidulhasanrafi/hisab/internal/core"
	"github.com/rashidulhasanrafi/hisab/internal/storage"
)

func newProfileID() string { return uuid.NewString() }

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrLastProfile         = errors.New("cannot delete the only profile")
)

// DefaultProfileName is used when the store starts completely empty.
const DefaultProfileName = "Personal"

// Manager owns the profile list and the active-profile pointer. Each
// profile is an isolated namespace; profiles are never merged.
type Manager struct {
	kv storage.KV
}

func NewManager(kv storage.KV) *Manager {
	return &Manager{kv: kv}
}

func (m *Manager) Profiles(ctx context.Context) ([]core.Profile, error) {
	return loadJSON(ctx, m.kv, KeyProfiles, []core.Profile{})
}

// ActiveProfileID returns the currently selected profile id, empty when
// nothing was ever selected.
func (m *Manager) ActiveProfileID(ctx context.Context) (string, error) {
	id, _, err := m.kv.Get(ctx, KeyActiveProfile)
	if err != nil {
		return "", fmt.Errorf("load active profile: %w", err)
	}
	return id, nil
}

// EnsureDefault guarantees at least one profile exists and is active,
// creating DefaultProfileName on a fresh store. Returns the active id.
func (m *Manager) EnsureDefault(ctx context.Context) (string, error) {
	profiles, err := m.Profiles(ctx)
	if err != nil {
		return "", err
	}
	if len(profiles) == 0 {
		p, err := m.Create(ctx, DefaultProfileName)
		if err != nil {
			return "", err
		}
		slog.InfoContext(ctx, "Created default profile", "profile_id", p.ID)
		return p.ID, nil
	}

	active, err := m.ActiveProfileID(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range profiles {
		if p.ID == active {
			return active, nil
		}
	}
	// Stored pointer is stale; fall back to the first profile.
	if err := m.kv.Set(ctx, KeyActiveProfile, profiles[0].ID); err != nil {
		return "", fmt.Errorf("reset active profile: %w", err)
	}
	return profiles[0].ID, nil
}

// Create appends a new profile and switches the active pointer to it.
func (m *Manager) Create(ctx context.Context, name string) (core.Profile, error) {
	if name == "" {
		return core.Profile{}, core.ErrEmptyName
	}
	profiles, err := m.Profiles(ctx)
	if err != nil {
		return core.Profile{}, err
	}

	p := core.Profile{ID: newProfileID(), Name: name}
	profiles = append(profiles, p)
	if err := saveJSON(ctx, m.kv, KeyProfiles, profiles); err != nil {
		return core.Profile{}, err
	}
	if err := m.kv.Set(ctx, KeyActiveProfile, p.ID); err != nil {
		return core.Profile{}, fmt.Errorf("set active profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile created", "profile_id", p.ID, "name", name)
	return p, nil
}

// Switch changes which namespace subsequent reads and writes target. The
// caller must reload its Store from the new namespace afterwards.
func (m *Manager) Switch(ctx context.Context, id string) error {
	profiles, err := m.Profiles(ctx)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if p.ID == id {
			if err := m.kv.Set(ctx, KeyActiveProfile, id); err != nil {
				return fmt.Errorf("set active profile: %w", err)
			}
			return nil
		}
	}
	return ErrProfileNotFound
}

// Delete removes a profile and cascades every namespaced key it owns.
// Deleting the last remaining profile is rejected outright: the profile
// count never drops to zero. If the deleted profile was active, the first
// remaining profile becomes active; the caller must reload its Store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	profiles, err := m.Profiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) <= 1 {
		return ErrLastProfile
	}

	idx := -1
	for i, p := range profiles {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrProfileNotFound
	}

	remaining := append(profiles[:idx:idx], profiles[idx+1:]...)
	if err := saveJSON(ctx, m.kv, KeyProfiles, remaining); err != nil {
		return err
	}

	for _, key := range profileKeys(id) {
		if err := m.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("cascade delete: %w", err)
		}
	}

	active, err := m.ActiveProfileID(ctx)
	if err != nil {
		return err
	}
	if active == id {
		if err := m.kv.Set(ctx, KeyActiveProfile, remaining[0].ID); err != nil {
			return fmt.Errorf("switch active profile: %w", err)
		}
	}

	slog.InfoContext(ctx, "Profile deleted", "profile_id", id, "remaining", len(remaining))
	return nil
}
