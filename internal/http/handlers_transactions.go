package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rashidulhasanrafi/hisab/internal/core"
	"github.com/rashidulhasanrafi/hisab/internal/ledger"
)

type transactionRequest struct {
	Amount             decimal.Decimal      `json:"amount"`
	Category           string               `json:"category"`
	Note               string               `json:"note"`
	Date               string               `json:"date"`
	Type               core.TransactionType `json:"type"`
	ExcludeFromBalance bool                 `json:"excludeFromBalance"`
}

func (tr transactionRequest) input() ledger.TransactionInput {
	return ledger.TransactionInput{
		Amount:             tr.Amount,
		Category:           tr.Category,
		Note:               tr.Note,
		Date:               tr.Date,
		Type:               tr.Type,
		ExcludeFromBalance: tr.ExcludeFromBalance,
	}
}

type transactionListResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	EditingID    string             `json:"editingId,omitempty"`
	Currency     string             `json:"currency"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, transactionListResponse{
			Transactions: s.store.Transactions(),
			EditingID:    s.store.Editing(),
			Currency:     s.store.Currency(),
		})
	case http.MethodPost:
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		t, err := s.store.AddTransaction(r.Context(), req.input())
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		s.invalidateStats()
		slog.InfoContext(r.Context(), "Transaction created",
			"transaction_id", t.ID, "type", t.Type, "category", t.Category)
		writeJSON(w, http.StatusCreated, t)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := s.store.ClearTransactions(r.Context()); err != nil {
		writeLedgerError(w, r, err)
		return
	}
	s.invalidateStats()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/transactions/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction id")
		return
	}

	if action == "edit" {
		s.handleEditMarker(w, r, id)
		return
	}
	if action != "" {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		t, err := s.store.UpdateTransaction(r.Context(), id, req.input())
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		s.invalidateStats()
		writeJSON(w, http.StatusOK, t)
	case http.MethodDelete:
		if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		s.invalidateStats()
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

// handleEditMarker sets or clears the single editing marker. POST marks
// the transaction as being edited; DELETE clears the marker if it still
// points at the same transaction.
func (s *Server) handleEditMarker(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPost:
		if err := s.store.SetEditing(id); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"editingId": id})
	case http.MethodDelete:
		if s.store.Editing() == id {
			_ = s.store.SetEditing("")
		}
		writeJSON(w, http.StatusOK, map[string]string{"editingId": s.store.Editing()})
	default:
		methodNotAllowed(w, http.MethodPost, http.MethodDelete)
	}
}

type dashboardResponse struct {
	Stats    core.DashboardStats `json:"stats"`
	Currency string              `json:"currency"`
	Symbol   string              `json:"symbol"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	// Key lookup and stats computation must see the same mounted profile;
	// without the mount lock a concurrent switch could cache one profile's
	// totals under another's key for the full TTL.
	s.mountMu.Lock()
	key := s.statsKey()
	stats, found := s.statsCache.Get(key)
	if !found {
		stats = s.store.Stats()
		s.statsCache.Set(key, stats)
	}
	currency := s.store.Currency()
	s.mountMu.Unlock()

	writeJSON(w, http.StatusOK, dashboardResponse{
		Stats:    stats,
		Currency: currency,
		Symbol:   core.CurrencySymbol(currency),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"income":  s.store.Categories(core.Income),
		"expense": s.store.Categories(core.Expense),
		"savings": s.store.Categories(core.Savings),
	})
}

// categoryType maps a path segment to a transaction type.
func categoryType(segment string) (core.TransactionType, bool) {
	switch segment {
	case "income":
		return core.Income, true
	case "expense":
		return core.Expense, true
	case "savings":
		return core.Savings, true
	}
	return "", false
}

// handleCategoryByType serves /api/categories/{type} and
// /api/categories/{type}/{name}. The name segment arrives URL-decoded, so
// categories with spaces or ampersands round-trip.
func (s *Server) handleCategoryByType(w http.ResponseWriter, r *http.Request) {
	segment, name := pathID(r.URL.Path, "/api/categories/")
	typ, ok := categoryType(segment)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown category type")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if name != "" {
			writeError(w, http.StatusNotFound, "unknown action")
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"categories": s.store.Categories(typ)})
	case http.MethodPost:
		if name != "" {
			writeError(w, http.StatusNotFound, "unknown action")
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.store.AddCategory(r.Context(), typ, req.Name); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string][]string{"categories": s.store.Categories(typ)})
	case http.MethodDelete:
		if name == "" {
			writeError(w, http.StatusBadRequest, "missing category name")
			return
		}
		if err := s.store.RemoveCategory(r.Context(), typ, name); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"categories": s.store.Categories(typ)})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}
