package core

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// Currency describes a supported display currency.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Currencies lists every currency the tracker knows a symbol for.
var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "BDT", Symbol: "৳", Name: "Bangladeshi Taka"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
}

// ExchangeRates maps a currency code to units per USD. Static table; the
// tracker never fetches live rates.
var ExchangeRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"BDT": decimal.RequireFromString("122.50"),
	"EUR": decimal.RequireFromString("0.96"),
	"GBP": decimal.RequireFromString("0.81"),
	"INR": decimal.RequireFromString("86.85"),
	"JPY": decimal.RequireFromString("154.50"),
	"CAD": decimal.RequireFromString("1.44"),
	"AUD": decimal.RequireFromString("1.60"),
}

// conversionScale bounds division precision during conversion. Repeated
// hard rebases still do not round-trip exactly; callers compare with an
// epsilon, never exact equality.
const conversionScale = 8

// RateOf returns the units-per-USD rate for code. Unknown codes fall back
// to 1 (treated as USD-equivalent) with a warning rather than an error.
func RateOf(code string) decimal.Decimal {
	if r, ok := ExchangeRates[code]; ok {
		return r
	}
	slog.Warn("Unknown currency code, defaulting rate to 1", "code", code)
	return decimal.NewFromInt(1)
}

// CurrencySymbol returns the display symbol for code, "$" if unknown.
func CurrencySymbol(code string) string {
	for _, c := range Currencies {
		if c.Code == code {
			return c.Symbol
		}
	}
	return "$"
}

// Convert rebases amount from one currency to another through USD.
func Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	if from == to {
		return amount
	}
	return amount.DivRound(RateOf(from), conversionScale).Mul(RateOf(to))
}

// RebaseTransactions destructively rewrites every amount to newCode and
// retags the currency. Each entry converts from its own currency tag, so
// a ledger with mixed tags left behind by soft currency changes rebases
// correctly; oldCode covers untagged entries. The inverse rebase only
// approximately restores the original amounts.
func RebaseTransactions(txs []Transaction, oldCode, newCode string) []Transaction {
	out := make([]Transaction, len(txs))
	for i, t := range txs {
		from := t.Currency
		if from == "" {
			from = oldCode
		}
		t.Amount = Convert(t.Amount, from, newCode)
		t.Currency = newCode
		out[i] = t
	}
	return out
}

// RebaseGoals rewrites goal targets and saved amounts the same way.
func RebaseGoals(goals []Goal, oldCode, newCode string) []Goal {
	out := make([]Goal, len(goals))
	for i, g := range goals {
		from := g.Currency
		if from == "" {
			from = oldCode
		}
		g.TargetAmount = Convert(g.TargetAmount, from, newCode)
		g.SavedAmount = Convert(g.SavedAmount, from, newCode)
		g.Currency = newCode
		out[i] = g
	}
	return out
}
