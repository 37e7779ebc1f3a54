// Package ledger implements the profile-scoped application store: the
// ordered transaction list, category lists, savings goals, and the display
// currency, all persisted as namespaced keys in a KV store. Dashboard
// totals are derived from the ledger on demand; they are never persisted.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rashidulhasanrafi/hisab/internal/core"
	"github.com/rashidulhasanrafi/hisab/internal/storage"
)

// DefaultCurrency is assigned to a profile that has no stored preference.
const DefaultCurrency = "BDT"

// Ledger event kinds published to the backup mirror queue.
const (
	EventTransactionCreated = "transaction_created"
	EventTransactionUpdated = "transaction_updated"
	EventTransactionDeleted = "transaction_deleted"
	EventGoalFunded         = "goal_funded"
	EventGoalWithdrawn      = "goal_withdrawn"
	EventLedgerRebased      = "ledger_rebased"
	EventLedgerCleared      = "ledger_cleared"
)

// EventSink receives ledger change notifications. Publish failures never
// fail the user operation; the store logs and continues.
type EventSink interface {
	PublishLedgerEvent(ctx context.Context, kind, profileID, refID string) error
}

// TransactionInput carries the user-editable fields of a ledger entry.
type TransactionInput struct {
	Amount             decimal.Decimal
	Category           string
	Note               string
	Date               string
	Type               core.TransactionType
	ExcludeFromBalance bool
}

// Store holds one profile's ledger state in memory and mirrors every
// mutation to the KV store synchronously. The model is single-user but the
// HTTP server is not, so a mutex serializes operations; there is no
// optimistic versioning and no multi-device coordination.
type Store struct {
	mu sync.Mutex
	kv storage.KV

	events EventSink // optional

	profileID    string
	currency     string
	transactions []core.Transaction
	goals        []core.Goal
	incomeCats   []string
	expenseCats  []string
	savingsCats  []string
	editingID    string
}

func NewStore(kv storage.KV, events EventSink) *Store {
	return &Store{kv: kv, events: events}
}

// Load replaces the entire in-memory state with profileID's namespace.
// Switching profiles is a remount, not an incremental diff: nothing from
// the previous profile survives, including the editing marker.
func (s *Store) Load(ctx context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	currency, ok, err := s.kv.Get(ctx, currencyKey(profileID))
	if err != nil {
		return fmt.Errorf("load currency: %w", err)
	}
	if !ok || currency == "" {
		currency = DefaultCurrency
	}

	txs, err := loadJSON(ctx, s.kv, transactionsKey(profileID), []core.Transaction{})
	if err != nil {
		return err
	}
	goals, err := loadJSON(ctx, s.kv, goalsKey(profileID), []core.Goal{})
	if err != nil {
		return err
	}
	incomeCats, err := loadJSON(ctx, s.kv, categoriesKey(core.Income, profileID), core.CategoriesFor(core.Income))
	if err != nil {
		return err
	}
	expenseCats, err := loadJSON(ctx, s.kv, categoriesKey(core.Expense, profileID), core.CategoriesFor(core.Expense))
	if err != nil {
		return err
	}
	savingsCats, err := loadJSON(ctx, s.kv, categoriesKey(core.Savings, profileID), core.CategoriesFor(core.Savings))
	if err != nil {
		return err
	}

	// Backfill currency tags on entries persisted before tagging existed.
	for i := range txs {
		if txs[i].Currency == "" {
			txs[i].Currency = currency
		}
	}

	s.profileID = profileID
	s.currency = currency
	s.transactions = txs
	s.goals = goals
	s.incomeCats = incomeCats
	s.expenseCats = expenseCats
	s.savingsCats = savingsCats
	s.editingID = ""

	slog.InfoContext(ctx, "Ledger loaded",
		"profile_id", profileID,
		"transactions", len(txs),
		"goals", len(goals),
		"currency", currency)
	return nil
}

// ProfileID returns the profile this store is currently mounted on.
func (s *Store) ProfileID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileID
}

func (s *Store) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

// Stats folds the ledger into dashboard totals in the display currency.
func (s *Store) Stats() core.DashboardStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(s.transactions, s.currency)
}

// Transactions returns a copy of the ledger, newest first.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

func (s *Store) Goals() []core.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

func (s *Store) Categories(typ core.TransactionType) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.categoryList(typ)
	out := make([]string, len(*src))
	copy(out, *src)
	return out
}

func (s *Store) categoryList(typ core.TransactionType) *[]string {
	switch typ {
	case core.Income:
		return &s.incomeCats
	case core.Savings:
		return &s.savingsCats
	default:
		return &s.expenseCats
	}
}

// AddTransaction validates in and prepends a new entry tagged with the
// current display currency. The category must be in the profile's
// configured list at creation time; it is not re-validated afterwards.
func (s *Store) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := core.NewTransaction(in.Amount, in.Category, in.Note, in.Type, in.Date, s.currency, in.ExcludeFromBalance)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if !contains(*s.categoryList(in.Type), in.Category) {
		return core.Transaction{}, core.ErrUnknownCategory
	}

	s.transactions = append([]core.Transaction{t}, s.transactions...)
	if err := s.saveTransactions(ctx); err != nil {
		return core.Transaction{}, err
	}
	s.notify(ctx, EventTransactionCreated, t.ID)
	return t, nil
}

// UpdateTransaction replaces the user-editable fields in place, preserving
// the id and the stored currency tag. A successful update also clears the
// editing marker.
func (s *Store) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findTransaction(id)
	if idx < 0 {
		return core.Transaction{}, ErrTransactionNotFound
	}

	t := s.transactions[idx]
	t.Amount = in.Amount
	t.Category = in.Category
	t.Note = in.Note
	t.Type = in.Type
	t.Date = in.Date
	t.ExcludeFromBalance = in.Type == core.Savings && in.ExcludeFromBalance
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.transactions[idx] = t
	s.editingID = ""
	if err := s.saveTransactions(ctx); err != nil {
		return core.Transaction{}, err
	}
	s.notify(ctx, EventTransactionUpdated, id)
	return t, nil
}

// DeleteTransaction removes the entry. Deleting the transaction currently
// being edited clears the edit state.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findTransaction(id)
	if idx < 0 {
		return ErrTransactionNotFound
	}
	s.transactions = append(s.transactions[:idx], s.transactions[idx+1:]...)
	if s.editingID == id {
		s.editingID = ""
	}
	if err := s.saveTransactions(ctx); err != nil {
		return err
	}
	s.notify(ctx, EventTransactionDeleted, id)
	return nil
}

// ClearTransactions deletes every ledger entry for the profile but keeps
// categories, goals, and settings.
func (s *Store) ClearTransactions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = nil
	s.editingID = ""
	if err := s.saveTransactions(ctx); err != nil {
		return err
	}
	s.notify(ctx, EventLedgerCleared, s.profileID)
	return nil
}

// SetEditing marks the transaction the client is editing.
func (s *Store) SetEditing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && s.findTransaction(id) < 0 {
		return ErrTransactionNotFound
	}
	s.editingID = id
	return nil
}

func (s *Store) Editing() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// AddCategory appends name to the list for typ. Duplicate and emptiness
// checks live here, not in the caller.
func (s *Store) AddCategory(ctx context.Context, typ core.TransactionType, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return core.ErrEmptyCategory
	}
	list := s.categoryList(typ)
	if contains(*list, name) {
		return core.ErrDuplicateCategory
	}
	*list = append(*list, name)
	return saveJSON(ctx, s.kv, categoriesKey(typ, s.profileID), *list)
}

// RemoveCategory filters name out of the list. Transactions already tagged
// with it keep the now-orphaned category string; that is accepted behavior.
func (s *Store) RemoveCategory(ctx context.Context, typ core.TransactionType, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.categoryList(typ)
	filtered := (*list)[:0:0]
	for _, c := range *list {
		if c != name {
			filtered = append(filtered, c)
		}
	}
	*list = filtered
	return saveJSON(ctx, s.kv, categoriesKey(typ, s.profileID), *list)
}

func (s *Store) AddGoal(ctx context.Context, name string, target decimal.Decimal, category string, isFixedDeposit bool) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := core.NewGoal(name, target, s.currency, category, isFixedDeposit)
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.goals = append(s.goals, g)
	if err := s.saveGoals(ctx); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, id, name string, target decimal.Decimal, category string, isFixedDeposit bool) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findGoal(id)
	if idx < 0 {
		return core.Goal{}, ErrGoalNotFound
	}
	g := s.goals[idx]
	g.Name = name
	g.TargetAmount = target
	g.Category = category
	g.IsFixedDeposit = isFixedDeposit
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.goals[idx] = g
	if err := s.saveGoals(ctx); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findGoal(id)
	if idx < 0 {
		return ErrGoalNotFound
	}
	s.goals = append(s.goals[:idx], s.goals[idx+1:]...)
	return s.saveGoals(ctx)
}

// Deposit funds a goal: savedAmount grows by amount and a SAVINGS entry is
// appended in the same state transition. The two KV writes behind it are
// still separate keys with no cross-key transaction, so a failed second
// write leaves the goal total ahead of the ledger sum.
func (s *Store) Deposit(ctx context.Context, goalID string, amount decimal.Decimal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !amount.IsPositive() {
		return core.Goal{}, core.ErrInvalidAmount
	}
	idx := s.findGoal(goalID)
	if idx < 0 {
		return core.Goal{}, ErrGoalNotFound
	}

	g := s.goals[idx]
	g.SavedAmount = g.SavedAmount.Add(amount)
	s.goals[idx] = g

	t := core.NewTransaction(amount, g.FundingCategory(), "Deposit to: "+g.Name,
		core.Savings, core.Today(), s.currency, false)
	s.transactions = append([]core.Transaction{t}, s.transactions...)

	if err := s.saveGoals(ctx); err != nil {
		return core.Goal{}, err
	}
	if err := s.saveTransactions(ctx); err != nil {
		return core.Goal{}, err
	}
	s.notify(ctx, EventGoalFunded, goalID)
	return g, nil
}

// Withdraw removes funds from a goal, flooring savedAmount at zero, and
// appends a negative SAVINGS entry for the full requested amount.
func (s *Store) Withdraw(ctx context.Context, goalID string, amount decimal.Decimal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !amount.IsPositive() {
		return core.Goal{}, core.ErrInvalidAmount
	}
	idx := s.findGoal(goalID)
	if idx < 0 {
		return core.Goal{}, ErrGoalNotFound
	}

	g := s.goals[idx]
	g.SavedAmount = g.SavedAmount.Sub(amount)
	if g.SavedAmount.IsNegative() {
		g.SavedAmount = decimal.Zero
	}
	s.goals[idx] = g

	t := core.NewTransaction(amount.Neg(), core.CategorySavingsWithdrawal,
		"Withdrawal from: "+g.Name, core.Savings, core.Today(), s.currency, false)
	// No Validate call: withdrawals are the one place negative amounts
	// enter the ledger.
	s.transactions = append([]core.Transaction{t}, s.transactions...)

	if err := s.saveGoals(ctx); err != nil {
		return core.Goal{}, err
	}
	if err := s.saveTransactions(ctx); err != nil {
		return core.Goal{}, err
	}
	s.notify(ctx, EventGoalWithdrawn, goalID)
	return g, nil
}

// GeneralDeposit appends a goal-less savings entry; no goal is mutated.
func (s *Store) GeneralDeposit(ctx context.Context, amount decimal.Decimal) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !amount.IsPositive() {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	t := core.NewTransaction(amount, core.CategoryGeneralSavings,
		"Deposit to General Savings", core.Savings, core.Today(), s.currency, false)
	s.transactions = append([]core.Transaction{t}, s.transactions...)
	if err := s.saveTransactions(ctx); err != nil {
		return core.Transaction{}, err
	}
	s.notify(ctx, EventTransactionCreated, t.ID)
	return t, nil
}

func (s *Store) GeneralWithdraw(ctx context.Context, amount decimal.Decimal) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !amount.IsPositive() {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	t := core.NewTransaction(amount.Neg(), core.CategorySavingsWithdrawal,
		"Withdrawal from General Savings", core.Savings, core.Today(), s.currency, false)
	s.transactions = append([]core.Transaction{t}, s.transactions...)
	if err := s.saveTransactions(ctx); err != nil {
		return core.Transaction{}, err
	}
	s.notify(ctx, EventTransactionCreated, t.ID)
	return t, nil
}

// SetCurrency changes the display currency. The default is a soft change:
// only the preference moves, amounts keep their stored currency tags and
// are converted at read time. With rebase true every transaction and goal
// amount is destructively rewritten to the new currency; changing to the
// same code is a no-op either way.
func (s *Store) SetCurrency(ctx context.Context, code string, rebase bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code == s.currency {
		return nil
	}

	if rebase {
		s.transactions = core.RebaseTransactions(s.transactions, s.currency, code)
		s.goals = core.RebaseGoals(s.goals, s.currency, code)
		if err := s.saveTransactions(ctx); err != nil {
			return err
		}
		if err := s.saveGoals(ctx); err != nil {
			return err
		}
		s.notify(ctx, EventLedgerRebased, code)
	}

	s.currency = code
	if err := s.kv.Set(ctx, currencyKey(s.profileID), code); err != nil {
		return fmt.Errorf("save currency: %w", err)
	}
	return nil
}

func (s *Store) findTransaction(id string) int {
	for i, t := range s.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) findGoal(id string) int {
	for i, g := range s.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) saveTransactions(ctx context.Context) error {
	return saveJSON(ctx, s.kv, transactionsKey(s.profileID), s.transactions)
}

func (s *Store) saveGoals(ctx context.Context) error {
	return saveJSON(ctx, s.kv, goalsKey(s.profileID), s.goals)
}

func (s *Store) notify(ctx context.Context, kind, refID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, kind, s.profileID, refID); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"kind", kind, "ref_id", refID, "error", err)
	}
}

func contains(list []string, name string) bool {
	for _, c := range list {
		if c == name {
			return true
		}
	}
	return false
}
