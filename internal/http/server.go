// Package http exposes the tracker as a JSON API. Every handler operates
// on the currently mounted profile; switching profiles remounts the store
// before the next request sees it.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rashidulhasanrafi/hisab/internal/backup"
	"github.com/rashidulhasanrafi/hisab/internal/cache"
	"github.com/rashidulhasanrafi/hisab/internal/core"
	"github.com/rashidulhasanrafi/hisab/internal/insights"
	"github.com/rashidulhasanrafi/hisab/internal/ledger"
	"github.com/rashidulhasanrafi/hisab/internal/middleware/ratelimit"
	"github.com/rashidulhasanrafi/hisab/internal/middleware/security"
	"github.com/rashidulhasanrafi/hisab/internal/middleware/trace"
	"github.com/rashidulhasanrafi/hisab/internal/storage"
)

// TipGenerator produces one short financial tip from dashboard totals.
type TipGenerator interface {
	Tip(ctx context.Context, stats core.DashboardStats, currency, language string) (string, error)
}

// Options configures a Server. KV is required; Events and Tips are
// optional and degrade gracefully when absent.
type Options struct {
	Addr   string
	KV     storage.KV
	Events ledger.EventSink
	Tips   TipGenerator
}

type Server struct {
	http.Server

	kv       storage.KV
	store    *ledger.Store
	profiles *ledger.Manager
	prefs    *ledger.Prefs
	tips     TipGenerator

	// Dashboard totals are recomputed on every read; a short-TTL cache
	// keyed by profile and currency absorbs dashboard polling.
	statsCache *cache.LRUCache[core.DashboardStats]
	cacheMgr   *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	// serializes profile remounts against request handling
	mountMu sync.Mutex

	shutdownOnce sync.Once
}

// NewServer mounts the active profile (creating the default one on a fresh
// store) and wires routes and middleware.
func NewServer(ctx context.Context, opts Options) (*Server, error) {
	s := &Server{
		kv:         opts.KV,
		store:      ledger.NewStore(opts.KV, opts.Events),
		profiles:   ledger.NewManager(opts.KV),
		prefs:      ledger.NewPrefs(opts.KV),
		tips:       opts.Tips,
		statsCache: cache.NewLRUCache[core.DashboardStats](100, 30*time.Second),
		cacheMgr:   cache.NewManager(),
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:   security.NewDetector(),
	}
	s.cacheMgr.Register(s.statsCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	active, err := s.profiles.EnsureDefault(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Load(ctx, active); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/clear", s.handleClearTransactions)
	mux.HandleFunc("/api/transactions/", s.handleTransactionByID)
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/categories/", s.handleCategoryByType)

	mux.HandleFunc("/api/goals", s.handleGoals)
	mux.HandleFunc("/api/goals/", s.handleGoalByID)
	mux.HandleFunc("/api/savings/deposit", s.handleGeneralDeposit)
	mux.HandleFunc("/api/savings/withdraw", s.handleGeneralWithdraw)

	mux.HandleFunc("/api/profiles", s.handleProfiles)
	mux.HandleFunc("/api/profiles/", s.handleProfileByID)
	mux.HandleFunc("/api/currency", s.handleCurrency)
	mux.HandleFunc("/api/currencies", s.handleCurrencies)
	mux.HandleFunc("/api/prefs", s.handlePrefs)

	mux.HandleFunc("/api/export", s.handleExport)
	mux.HandleFunc("/api/import", s.handleImport)
	mux.HandleFunc("/api/insights/tip", s.handleTip)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	handler := s.withRateLimit(mux)
	handler = s.tracer.Middleware(handler)
	handler = headers.Middleware(handler)

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: handler,
	}
	return s, nil
}

// withRateLimit applies the per-IP limiter to mutating requests only;
// dashboard polling stays unthrottled.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request",
				"method", r.Method, "path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// invalidateStats drops the cached dashboard totals for the mounted
// profile. Called after every ledger mutation.
func (s *Server) invalidateStats() {
	s.statsCache.Delete(s.statsKey())
}

func (s *Server) statsKey() string {
	return s.store.ProfileID() + ":" + s.store.Currency()
}

// Shutdown stops background cleanup goroutines and the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleMetrics reports counters in Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	m := s.tracer.GetMetrics()
	d := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "# TYPE hisab_http_requests_total counter\n")
	fmt.Fprintf(w, "hisab_http_requests_total %d\n", m.TotalRequests)
	fmt.Fprintf(w, "# TYPE hisab_http_response_time_microseconds gauge\n")
	fmt.Fprintf(w, "hisab_http_response_time_microseconds %d\n", m.AverageResponseTime)
	fmt.Fprintf(w, "# TYPE hisab_suspicious_requests_total counter\n")
	fmt.Fprintf(w, "hisab_suspicious_requests_total %d\n", d.SuspiciousRequests)
	fmt.Fprintf(w, "# TYPE hisab_ratelimit_clients gauge\n")
	fmt.Fprintf(w, "hisab_ratelimit_clients %d\n", s.limiter.ActiveClients())
	fmt.Fprintf(w, "# TYPE hisab_stats_cache_entries gauge\n")
	fmt.Fprintf(w, "hisab_stats_cache_entries %d\n", s.statsCache.Size())
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready once the KV store answers.
	if _, _, err := s.kv.Get(r.Context(), ledger.KeyProfiles); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleExport streams the full backup document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	data, err := backup.Export(r.Context(), s.kv)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="hisab-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport replaces recognized keys wholesale and remounts the active
// profile so the response already reflects imported data.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := backup.Import(r.Context(), s.kv, body); err != nil {
		writeLedgerError(w, r, err)
		return
	}

	s.mountMu.Lock()
	defer s.mountMu.Unlock()
	active, err := s.profiles.EnsureDefault(r.Context())
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	if err := s.store.Load(r.Context(), active); err != nil {
		writeLedgerError(w, r, err)
		return
	}
	s.invalidateStats()

	slog.InfoContext(r.Context(), "Backup imported", "active_profile", active)
	writeJSON(w, http.StatusOK, map[string]string{"activeProfileId": active})
}

func (s *Server) handleTip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Language string `json:"language"`
	}
	// The body is optional; without one the language preference applies.
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	lang := req.Language
	if lang == "" {
		if prefs, err := s.prefs.Get(r.Context()); err == nil {
			lang = prefs.Language
		}
	}

	if s.tips == nil {
		writeJSON(w, http.StatusOK, tipResponse{Tip: insights.FallbackTip(lang), Generated: false})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	tip, err := s.tips.Tip(ctx, s.store.Stats(), s.store.Currency(), lang)
	if err != nil {
		slog.WarnContext(r.Context(), "Tip generation failed", "error", err)
		writeJSON(w, http.StatusOK, tipResponse{Tip: insights.FallbackTip(lang), Generated: false})
		return
	}
	writeJSON(w, http.StatusOK, tipResponse{Tip: tip, Generated: true})
}

type tipResponse struct {
	Tip       string `json:"tip"`
	Generated bool   `json:"generated"`
}
