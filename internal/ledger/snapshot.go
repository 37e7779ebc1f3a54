package ledger

import (
	"context"
	"fmt"

	"github.com/rashidulhasanrafi/hisab/internal/core"
	"github.com/rashidulhasanrafi/hisab/internal/storage"
)

// ProfileSnapshot is a read-only view of one profile's persisted state,
// used by consumers that mirror the ledger without mounting a Store.
type ProfileSnapshot struct {
	Profile      core.Profile
	Currency     string
	Transactions []core.Transaction
	Goals        []core.Goal
}

// LoadProfiles reads the stored profile list without touching any
// per-profile namespace.
func LoadProfiles(ctx context.Context, kv storage.KV) ([]core.Profile, error) {
	return loadJSON(ctx, kv, KeyProfiles, []core.Profile{})
}

// LoadSnapshot reads a profile's currency, transactions, and goals directly
// from the KV store. Currency-tag backfill matches Store.Load so mirrored
// rows carry the same tags the server would report.
func LoadSnapshot(ctx context.Context, kv storage.KV, profile core.Profile) (ProfileSnapshot, error) {
	currency, ok, err := kv.Get(ctx, currencyKey(profile.ID))
	if err != nil {
		return ProfileSnapshot{}, fmt.Errorf("load currency: %w", err)
	}
	if !ok || currency == "" {
		currency = DefaultCurrency
	}

	txs, err := loadJSON(ctx, kv, transactionsKey(profile.ID), []core.Transaction{})
	if err != nil {
		return ProfileSnapshot{}, err
	}
	goals, err := loadJSON(ctx, kv, goalsKey(profile.ID), []core.Goal{})
	if err != nil {
		return ProfileSnapshot{}, err
	}

	for i := range txs {
		if txs[i].Currency == "" {
			txs[i].Currency = currency
		}
	}

	return ProfileSnapshot{
		Profile:      profile,
		Currency:     currency,
		Transactions: txs,
		Goals:        goals,
	}, nil
}
