// Package core holds the tracker's domain model: transactions, goals,
// profiles, the static currency table, and the ledger aggregation that
// derives dashboard totals. It performs no I/O.
package core

import "github.com/shopspring/decimal"

// Summarize folds the full transaction list into dashboard totals,
// converting each entry from its own stored currency to displayCurrency at
// read time. Stored amounts are never modified here.
//
// Savings withdrawals are negative SAVINGS entries, so they reduce
// TotalSavings naturally. SAVINGS entries flagged excludeFromBalance count
// toward TotalSavings but not toward Balance.
func Summarize(txs []Transaction, displayCurrency string) DashboardStats {
	income := decimal.Zero
	expense := decimal.Zero
	savings := decimal.Zero
	deducted := decimal.Zero

	for _, t := range txs {
		from := t.Currency
		if from == "" {
			from = displayCurrency
		}
		amount := Convert(t.Amount, from, displayCurrency)
		switch t.Type {
		case Income:
			income = income.Add(amount)
		case Expense:
			expense = expense.Add(amount)
		case Savings:
			savings = savings.Add(amount)
			if !t.ExcludeFromBalance {
				deducted = deducted.Add(amount)
			}
		}
	}

	return DashboardStats{
		TotalIncome:  income,
		TotalExpense: expense,
		TotalSavings: savings,
		Balance:      income.Sub(expense).Sub(deducted),
	}
}
