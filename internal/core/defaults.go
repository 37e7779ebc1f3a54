package core

// Default category lists seeded into every new profile. Users can add and
// remove entries per profile afterwards.

var DefaultExpenseCategories = []string{
	"Food & Dining",
	"Rent & Housing",
	"Transportation",
	"Utilities",
	"Entertainment",
	"Healthcare",
	"Shopping",
	"Education",
	"Travel",
	"Insurance",
	"Subscriptions",
	"Personal Care",
	"Gifts & Donations",
	"Taxes",
	"Debt Payments",
	"Others",
}

var DefaultIncomeCategories = []string{
	"Salary",
	"Freelance",
	"Investments",
	"Dividends",
	"Royalties",
	"Grants",
	"Rental Income",
	"Refunds",
	"Gifts",
	"Other Income",
}

var DefaultSavingsCategories = []string{
	CategoryGeneralSavings,
	CategoryGoalSaving,
	CategoryFixedDeposit,
	"Emergency Fund",
	"Retirement",
	"Investment Savings",
}

// CategoriesFor returns the default list for a transaction type.
func CategoriesFor(t TransactionType) []string {
	switch t {
	case Income:
		return DefaultIncomeCategories
	case Savings:
		return DefaultSavingsCategories
	default:
		return DefaultExpenseCategories
	}
}
