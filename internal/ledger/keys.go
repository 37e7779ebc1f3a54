package ledger

import "github.com/rashidulhasanrafi/hisab/internal/core"

// Storage key layout. Profile-scoped entities append the profile id to a
// recognized prefix; global preferences are flat keys.
const (
	KeyProfiles      = "hisab_profiles"
	KeyActiveProfile = "hisab_active_profile_id"

	KeyTheme    = "hisab_theme"
	KeyLanguage = "hisab_language"
	KeySound    = "hisab_sound"

	prefixTransactions      = "hisab_transactions_"
	prefixCurrency          = "hisab_currency_"
	prefixIncomeCategories  = "hisab_income_categories_"
	prefixExpenseCategories = "hisab_expense_categories_"
	prefixSavingsCategories = "hisab_savings_categories_"
	prefixGoals             = "hisab_goals_"
)

// RecognizedPrefixes covers every key the tracker may persist. Backup
// import rejects files that contain none of these.
var RecognizedPrefixes = []string{
	KeyProfiles,
	KeyActiveProfile,
	KeyTheme,
	KeyLanguage,
	KeySound,
	prefixTransactions,
	prefixCurrency,
	prefixIncomeCategories,
	prefixExpenseCategories,
	prefixSavingsCategories,
	prefixGoals,
}

func transactionsKey(profileID string) string { return prefixTransactions + profileID }
func currencyKey(profileID string) string     { return prefixCurrency + profileID }
func goalsKey(profileID string) string        { return prefixGoals + profileID }

func categoriesKey(typ core.TransactionType, profileID string) string {
	switch typ {
	case core.Income:
		return prefixIncomeCategories + profileID
	case core.Savings:
		return prefixSavingsCategories + profileID
	default:
		return prefixExpenseCategories + profileID
	}
}

// profileKeys lists every namespaced key owned by a profile, used by the
// delete cascade.
func profileKeys(profileID string) []string {
	return []string{
		transactionsKey(profileID),
		currencyKey(profileID),
		categoriesKey(core.Income, profileID),
		categoriesKey(core.Expense, profileID),
		categoriesKey(core.Savings, profileID),
		goalsKey(profileID),
	}
}
