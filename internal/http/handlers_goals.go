package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rashidulhasanrafi/hisab/internal/core"
)

type goalRequest struct {
	Name           string          `json:"name"`
	TargetAmount   decimal.Decimal `json:"targetAmount"`
	Category       string          `json:"category"`
	IsFixedDeposit bool            `json:"isFixedDeposit"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string][]core.Goal{"goals": s.store.Goals()})
	case http.MethodPost:
		var req goalRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		g, err := s.store.AddGoal(r.Context(), req.Name, req.TargetAmount, req.Category, req.IsFixedDeposit)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/goals/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing goal id")
		return
	}

	switch action {
	case "deposit":
		s.handleGoalFunding(w, r, id, true)
		return
	case "withdraw":
		s.handleGoalFunding(w, r, id, false)
		return
	case "":
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req goalRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		g, err := s.store.UpdateGoal(r.Context(), id, req.Name, req.TargetAmount, req.Category, req.IsFixedDeposit)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	case http.MethodDelete:
		if err := s.store.DeleteGoal(r.Context(), id); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

// handleGoalFunding moves money into or out of a goal, recording the
// matching savings transaction as a side effect.
func (s *Server) handleGoalFunding(w http.ResponseWriter, r *http.Request, id string, deposit bool) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		g   core.Goal
		err error
	)
	if deposit {
		g, err = s.store.Deposit(r.Context(), id, req.Amount)
	} else {
		g, err = s.store.Withdraw(r.Context(), id, req.Amount)
	}
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	s.invalidateStats()
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGeneralDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleGeneralFunding(w, r, true)
}

func (s *Server) handleGeneralWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleGeneralFunding(w, r, false)
}

func (s *Server) handleGeneralFunding(w http.ResponseWriter, r *http.Request, deposit bool) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		t   core.Transaction
		err error
	)
	if deposit {
		t, err = s.store.GeneralDeposit(r.Context(), req.Amount)
	} else {
		t, err = s.store.GeneralWithdraw(r.Context(), req.Amount)
	}
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	s.invalidateStats()
	writeJSON(w, http.StatusCreated, t)
}
