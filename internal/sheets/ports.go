// Package sheets defines the outbound port for the backup mirror and its
// adapters: a Google Sheets implementation and an in-memory fake.
package sheets

import (
	"context"

	"github.com/rashidulhasanrafi/hisab/internal/core"
)

// LedgerMirror replaces the remote copy of one profile's ledger and goals
// with the given snapshot. Implementations must be idempotent: mirroring
// the same snapshot twice leaves the same remote state.
type LedgerMirror interface {
	MirrorProfile(ctx context.Context, profile core.Profile, currency string, txs []core.Transaction, goals []core.Goal) error
}
