package http

import (
	"log/slog"
	"net/http"

	"github.com/rashidulhasanrafi/hisab/internal/core"
	"github.com/rashidulhasanrafi/hisab/internal/ledger"
)

type profileListResponse struct {
	Profiles        []core.Profile `json:"profiles"`
	ActiveProfileID string         `json:"activeProfileId"`
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profiles, err := s.profiles.Profiles(r.Context())
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		active, err := s.profiles.ActiveProfileID(r.Context())
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profileListResponse{Profiles: profiles, ActiveProfileID: active})
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		s.mountMu.Lock()
		defer s.mountMu.Unlock()
		p, err := s.profiles.Create(r.Context(), req.Name)
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		// Creating a profile also switches to it.
		if err := s.store.Load(r.Context(), p.ID); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleProfileByID(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/profiles/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing profile id")
		return
	}

	switch action {
	case "switch":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.mountMu.Lock()
		defer s.mountMu.Unlock()
		if err := s.profiles.Switch(r.Context(), id); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		if err := s.store.Load(r.Context(), id); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		slog.InfoContext(r.Context(), "Profile switched", "profile_id", id)
		writeJSON(w, http.StatusOK, map[string]string{"activeProfileId": id})
	case "":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, http.MethodDelete)
			return
		}
		s.mountMu.Lock()
		defer s.mountMu.Unlock()
		if err := s.profiles.Delete(r.Context(), id); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		// Deleting the mounted profile remounts whichever became active.
		active, err := s.profiles.ActiveProfileID(r.Context())
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		if s.store.ProfileID() != active {
			if err := s.store.Load(r.Context(), active); err != nil {
				writeLedgerError(w, r, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"activeProfileId": active})
	default:
		writeError(w, http.StatusNotFound, "unknown action")
	}
}

type currencyRequest struct {
	Code   string `json:"code"`
	Rebase bool   `json:"rebase"`
}

// handleCurrency reads or changes the display currency. With rebase=false
// only the preference changes and totals convert at read time; with
// rebase=true every stored amount is rewritten in the new currency.
func (s *Server) handleCurrency(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		code := s.store.Currency()
		writeJSON(w, http.StatusOK, map[string]string{
			"code":   code,
			"symbol": core.CurrencySymbol(code),
		})
	case http.MethodPut:
		var req currencyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		prev := s.store.Currency()
		if err := s.store.SetCurrency(r.Context(), req.Code, req.Rebase); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		// The old cache entry is keyed by the previous currency.
		s.statsCache.Delete(s.store.ProfileID() + ":" + prev)
		s.invalidateStats()
		writeJSON(w, http.StatusOK, map[string]any{
			"code":    s.store.Currency(),
			"symbol":  core.CurrencySymbol(s.store.Currency()),
			"rebased": req.Rebase && prev != req.Code,
		})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]core.Currency{"currencies": core.Currencies})
}

func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		prefs, err := s.prefs.Get(r.Context())
		if err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	case http.MethodPut:
		var prefs ledger.Preferences
		if err := decodeJSON(r, &prefs); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.prefs.Set(r.Context(), prefs); err != nil {
			writeLedgerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}
