package google

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rashidulhasanrafi/hisab/internal/core"
)

func TestBuildRows(t *testing.T) {
	profile := core.Profile{ID: "p1", Name: "Personal"}
	txs := []core.Transaction{
		{ID: "t1", Date: "2025-02-01", Type: core.Expense, Category: "Food & Dining",
			Note: "lunch", Amount: decimal.RequireFromString("12.50"), Currency: "BDT"},
	}
	goals := []core.Goal{
		{ID: "g1", Name: "Car", TargetAmount: decimal.RequireFromString("5000"),
			SavedAmount: decimal.RequireFromString("1200"), Currency: "BDT", IsFixedDeposit: true},
	}

	rows := BuildRows(profile, "BDT", txs, goals)

	// Header, column names, 1 tx, spacer, goal header, 1 goal.
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(rows))
	}
	if rows[0][1] != "Personal" || rows[0][3] != "BDT" {
		t.Fatalf("profile header: %v", rows[0])
	}
	txRow := rows[2]
	if txRow[0] != "2025-02-01" || txRow[1] != "EXPENSE" || txRow[4] != "12.5" {
		t.Fatalf("tx row: %v", txRow)
	}
	goalRow := rows[5]
	if goalRow[0] != "Car" || goalRow[2] != "1200" || goalRow[4] != "yes" {
		t.Fatalf("goal row: %v", goalRow)
	}
}

func TestBuildRowsEmptyLedger(t *testing.T) {
	rows := BuildRows(core.Profile{ID: "p", Name: "Empty"}, "USD", nil, nil)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4 (headers only)", len(rows))
	}
}
