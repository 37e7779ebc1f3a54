// Package memory provides an in-memory LedgerMirror for tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"sync"

	"github.com/rashidulhasanrafi/hisab/internal/core"
)

// Snapshot is the last mirrored state of one profile.
type Snapshot struct {
	Profile      core.Profile
	Currency     string
	Transactions []core.Transaction
	Goals        []core.Goal
}

type Mirror struct {
	mu        sync.Mutex
	snapshots map[string]Snapshot
	calls     int
}

func New() *Mirror {
	return &Mirror{snapshots: make(map[string]Snapshot)}
}

func (m *Mirror) MirrorProfile(_ context.Context, profile core.Profile, currency string, txs []core.Transaction, goals []core.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[profile.ID] = Snapshot{
		Profile:      profile,
		Currency:     currency,
		Transactions: append([]core.Transaction(nil), txs...),
		Goals:        append([]core.Goal(nil), goals...),
	}
	m.calls++
	return nil
}

// Snapshot returns the last mirrored state for a profile id.
func (m *Mirror) Snapshot(profileID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[profileID]
	return s, ok
}

// Calls reports how many mirror operations ran.
func (m *Mirror) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
