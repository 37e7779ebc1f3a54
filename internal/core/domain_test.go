package core

import "testing"

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:   dec("10"),
		Category: "Food & Dining",
		Date:     "2025-06-15",
		Type:     Expense,
		Currency: "USD",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Transaction)
		want error
	}{
		{"zero amount", func(x *Transaction) { x.Amount = dec("0") }, ErrInvalidAmount},
		{"negative amount", func(x *Transaction) { x.Amount = dec("-5") }, ErrInvalidAmount},
		{"empty category", func(x *Transaction) { x.Category = "  " }, ErrEmptyCategory},
		{"bad date", func(x *Transaction) { x.Date = "15/06/2025" }, ErrInvalidDate},
		{"bad type", func(x *Transaction) { x.Type = "TRANSFER" }, ErrInvalidType},
	}
	for _, tc := range cases {
		x := good
		tc.mut(&x)
		if err := x.Validate(); err != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestNewTransactionDropsExcludeFlagForNonSavings(t *testing.T) {
	x := NewTransaction(dec("10"), "Salary", "", Income, "2025-01-01", "USD", true)
	if x.ExcludeFromBalance {
		t.Fatal("exclude flag must only survive on SAVINGS entries")
	}
	s := NewTransaction(dec("10"), CategoryGeneralSavings, "", Savings, "2025-01-01", "USD", true)
	if !s.ExcludeFromBalance {
		t.Fatal("exclude flag dropped on SAVINGS entry")
	}
	if x.ID == "" || x.ID == s.ID {
		t.Fatalf("ids not unique: %q %q", x.ID, s.ID)
	}
}

func TestGoalValidate(t *testing.T) {
	if err := (Goal{Name: "Car", TargetAmount: dec("100")}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Goal{Name: " ", TargetAmount: dec("100")}).Validate(); err != ErrEmptyName {
		t.Fatalf("got %v, want ErrEmptyName", err)
	}
	if err := (Goal{Name: "Car", TargetAmount: dec("0")}).Validate(); err != ErrInvalidAmount {
		t.Fatalf("got %v, want ErrInvalidAmount", err)
	}
}

func TestCategoriesForSelectsDefaultList(t *testing.T) {
	if got := CategoriesFor(Income); len(got) == 0 || got[0] != DefaultIncomeCategories[0] {
		t.Fatalf("income defaults = %v", got)
	}
	if got := CategoriesFor(Savings); len(got) == 0 || got[0] != DefaultSavingsCategories[0] {
		t.Fatalf("savings defaults = %v", got)
	}
	if got := CategoriesFor(Expense); len(got) == 0 || got[0] != DefaultExpenseCategories[0] {
		t.Fatalf("expense defaults = %v", got)
	}
}

func TestGoalFundingCategory(t *testing.T) {
	cases := []struct {
		g    Goal
		want string
	}{
		{Goal{Category: "Emergency Fund"}, "Emergency Fund"},
		{Goal{IsFixedDeposit: true}, CategoryFixedDeposit},
		{Goal{}, CategoryGoalSaving},
	}
	for i, tc := range cases {
		if got := tc.g.FundingCategory(); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}
