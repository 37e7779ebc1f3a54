package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRateOfKnownAndUnknown(t *testing.T) {
	if !RateOf("BDT").Equal(dec("122.50")) {
		t.Fatalf("BDT rate = %s", RateOf("BDT"))
	}
	// Unknown codes silently fall back to 1.
	if !RateOf("XXX").Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unknown rate = %s", RateOf("XXX"))
	}
}

func TestConvertThroughUSD(t *testing.T) {
	got := Convert(dec("122.50"), "BDT", "USD")
	if !got.Equal(dec("1")) {
		t.Fatalf("122.50 BDT = %s USD, want 1", got)
	}
	got = Convert(dec("1"), "USD", "BDT")
	if !got.Equal(dec("122.50")) {
		t.Fatalf("1 USD = %s BDT, want 122.50", got)
	}
}

func TestRebaseNoOpWhenSameCurrency(t *testing.T) {
	txs := []Transaction{tx("123.45", Expense, "EUR", false)}
	goals := []Goal{{ID: "g", Name: "g", TargetAmount: dec("10"), SavedAmount: dec("5"), Currency: "EUR"}}

	outTxs := RebaseTransactions(txs, "EUR", "EUR")
	outGoals := RebaseGoals(goals, "EUR", "EUR")

	if !outTxs[0].Amount.Equal(dec("123.45")) || outTxs[0].Currency != "EUR" {
		t.Fatalf("no-op rebase changed transaction: %+v", outTxs[0])
	}
	if !outGoals[0].TargetAmount.Equal(dec("10")) || !outGoals[0].SavedAmount.Equal(dec("5")) {
		t.Fatalf("no-op rebase changed goal: %+v", outGoals[0])
	}
}

func TestRebaseRewritesAmountsAndTags(t *testing.T) {
	txs := []Transaction{tx("100", Income, "USD", false)}
	out := RebaseTransactions(txs, "USD", "BDT")
	if !out[0].Amount.Equal(dec("12250")) {
		t.Fatalf("amount = %s, want 12250", out[0].Amount)
	}
	if out[0].Currency != "BDT" {
		t.Fatalf("currency = %s, want BDT", out[0].Currency)
	}
	// Input slice untouched.
	if !txs[0].Amount.Equal(dec("100")) {
		t.Fatalf("input mutated: %s", txs[0].Amount)
	}
}

func TestRebaseMixedTagsConvertsEachFromItsOwnCurrency(t *testing.T) {
	// Soft currency changes leave tags diverging from the display
	// currency. A later hard rebase must convert each entry from its own
	// tag, not from the display currency.
	txs := []Transaction{
		tx("12250", Income, "BDT", false), // displays as 100 USD
		tx("50", Expense, "USD", false),
	}
	out := RebaseTransactions(txs, "USD", "EUR")
	if !out[0].Amount.Equal(dec("96")) {
		t.Fatalf("BDT-tagged amount = %s EUR, want 96", out[0].Amount)
	}
	if !out[1].Amount.Equal(dec("48")) {
		t.Fatalf("USD-tagged amount = %s EUR, want 48", out[1].Amount)
	}
	if out[0].Currency != "EUR" || out[1].Currency != "EUR" {
		t.Fatalf("tags = %s, %s, want EUR", out[0].Currency, out[1].Currency)
	}

	// Untagged entries fall back to the old display currency.
	legacy := []Transaction{{ID: "t", Amount: dec("100"), Category: "Salary", Date: "2026-08-01", Type: Income}}
	out = RebaseTransactions(legacy, "USD", "EUR")
	if !out[0].Amount.Equal(dec("96")) {
		t.Fatalf("untagged amount = %s EUR, want 96", out[0].Amount)
	}

	goals := []Goal{{ID: "g", Name: "g", TargetAmount: dec("12250"), SavedAmount: dec("6125"), Currency: "BDT"}}
	outGoals := RebaseGoals(goals, "USD", "EUR")
	if !outGoals[0].TargetAmount.Equal(dec("96")) || !outGoals[0].SavedAmount.Equal(dec("48")) {
		t.Fatalf("goal rebased from display currency instead of its tag: %+v", outGoals[0])
	}
}

func TestRebaseRoundTripWithinEpsilon(t *testing.T) {
	orig := dec("1234.56")
	txs := []Transaction{tx("1234.56", Expense, "USD", false)}

	there := RebaseTransactions(txs, "USD", "INR")
	back := RebaseTransactions(there, "INR", "USD")

	// Round trips drift by rounding at the division step, so compare with
	// an epsilon, never exact equality.
	eps := dec("0.01")
	diff := back[0].Amount.Sub(orig).Abs()
	if diff.GreaterThan(eps) {
		t.Fatalf("round trip drifted %s (got %s, want ~%s)", diff, back[0].Amount, orig)
	}
}

func TestRebaseGoals(t *testing.T) {
	goals := []Goal{{ID: "g", Name: "Car", TargetAmount: dec("5000"), SavedAmount: dec("1000"), Currency: "USD"}}
	out := RebaseGoals(goals, "USD", "EUR")
	if !out[0].TargetAmount.Equal(dec("4800")) {
		t.Fatalf("target = %s, want 4800", out[0].TargetAmount)
	}
	if !out[0].SavedAmount.Equal(dec("960")) {
		t.Fatalf("saved = %s, want 960", out[0].SavedAmount)
	}
	if out[0].Currency != "EUR" {
		t.Fatalf("currency = %s", out[0].Currency)
	}
}

func TestCurrencySymbol(t *testing.T) {
	if CurrencySymbol("BDT") != "৳" {
		t.Fatalf("BDT symbol = %s", CurrencySymbol("BDT"))
	}
	if CurrencySymbol("XXX") != "$" {
		t.Fatalf("fallback symbol = %s", CurrencySymbol("XXX"))
	}
}
