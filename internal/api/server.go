// Package api serves the chapter catalog and run history over HTTP.
// GET endpoints are public. POST /api/v1/runs and DELETE
// /api/v1/runs/{id} require the admin bearer token; on-demand chapter
// runs are rate limited per client.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/psi-verify/internal/buildinfo"
	"github.com/talgya/psi-verify/internal/cache"
	"github.com/talgya/psi-verify/internal/chapters"
	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
	"github.com/talgya/psi-verify/internal/metrics"
	"github.com/talgya/psi-verify/internal/persistence"
	"github.com/talgya/psi-verify/internal/report"
)

// Store is the run history the server reads and writes.
type Store interface {
	SaveReport(rep *engine.Report) error
	ListRuns(limit int) ([]persistence.RunSummary, error)
	LoadRun(id string) (*engine.Report, error)
	LatestRun() (*engine.Report, error)
	DeleteRun(id string) error
}

// ReportCache holds recent reports outside the process.
type ReportCache interface {
	Put(ctx context.Context, rep *engine.Report) error
	Latest(ctx context.Context) (*engine.Report, error)
	Get(ctx context.Context, runID string) (*engine.Report, error)
	Invalidate(ctx context.Context, runID string) error
}

// Server serves the API. Zero-valued optional fields disable the
// matching feature: no Store means no history, no Cache means the
// latest report comes from memory or the Store, and an empty AdminKey
// disables POST /api/v1/runs.
type Server struct {
	Catalog     *chapters.Catalog
	Store       Store
	Cache       ReportCache
	Metrics     *metrics.Metrics
	AdminKey    string
	CORSOrigins []string
	Workers     int
	Seed        int64 // zero draws a seed per run

	RunLimiter *RateLimiter

	started time.Time

	runMu sync.Mutex // serializes on-demand runs

	latestMu sync.Mutex
	latest   *engine.Report
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	if s.RunLimiter == nil {
		s.RunLimiter = NewRateLimiter(30, time.Hour)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/chapters", s.handleChapters)
		r.Get("/chapters/{id}", s.handleChapter)
		r.With(s.RunLimiter.Middleware).Post("/chapters/{id}/run", s.handleRunChapter)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
		r.With(s.adminOnly).Delete("/runs/{id}", s.handleDeleteRun)
		r.With(s.adminOnly).Post("/runs", s.handleStartRun)
		r.Get("/report/latest", s.handleLatest)
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}
	return r
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "",
		"store", s.Store != nil, "cache", s.Cache != nil)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	slog.Info("HTTP API stopped")
	return nil
}

// cors adds CORS headers for the configured origins. Localhost dev
// servers are always allowed.
func (s *Server) cors(next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, o := range s.CORSOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

// adminOnly requires the admin bearer token.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			writeError(w, http.StatusForbidden, "admin endpoints disabled (no PSIVERIFY_ADMIN_KEY set)")
			return
		}
		if !s.checkBearerToken(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"version":    buildinfo.Read().Version,
		"suites":     s.Catalog.Len(),
		"books":      s.Catalog.Books(),
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"store":      s.Store != nil,
		"cache":      s.Cache != nil,
		"admin_auth": s.AdminKey != "",
	}
	if rep := s.latestReport(r.Context()); rep != nil {
		status["last_run"] = map[string]any{
			"run_id":      rep.RunID,
			"finished_at": rep.FinishedAt,
			"exit_code":   rep.ExitCode(),
			"stats":       rep.Stats,
			"verdicts":    rep.Verdicts(),
		}
	}
	writeJSON(w, http.StatusOK, status)
}

type chapterSummary struct {
	ID         string        `json:"id"`
	Book       string        `json:"book"`
	Part       string        `json:"part,omitempty"`
	Chapter    int           `json:"chapter"`
	Variant    check.Variant `json:"variant"`
	Title      string        `json:"title"`
	Checks     int           `json:"checks"`
	Violations int           `json:"violations"`
}

func summarize(st *check.Suite) chapterSummary {
	return chapterSummary{
		ID:         st.ID,
		Book:       st.Book,
		Part:       st.Part,
		Chapter:    st.Chapter,
		Variant:    st.Variant,
		Title:      st.Title,
		Checks:     len(st.Checks),
		Violations: len(st.Violations),
	}
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var variant check.Variant
	if v := q.Get("variant"); v != "" {
		parsed, err := check.ParseVariant(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		variant = parsed
	}
	suites := s.Catalog.Filter(q.Get("book"), variant)
	out := make([]chapterSummary, 0, len(suites))
	for _, st := range suites {
		out = append(out, summarize(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	st, err := s.Catalog.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	type checkInfo struct {
		Name string `json:"name"`
		Doc  string `json:"doc,omitempty"`
	}
	checks := make([]checkInfo, len(st.Checks))
	for i, c := range st.Checks {
		checks[i] = checkInfo{Name: c.Name, Doc: c.Doc}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chapter":         summarize(st),
		"source":          st.Source,
		"constants":       st.Constants,
		"checks":          checks,
		"violation_notes": st.Violations,
		"issues":          st.Issues,
		"markdown":        report.SuiteDetail(st),
	})
}

func (s *Server) handleRunChapter(w http.ResponseWriter, r *http.Request) {
	st, err := s.Catalog.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	seed := s.Seed
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "seed must be an integer")
			return
		}
	}
	s.execute(w, r, []*check.Suite{st}, seed, false)
}

type runRequest struct {
	IDs      []string `json:"ids"`
	Book     string   `json:"book"`
	Variant  string   `json:"variant"`
	Seed     int64    `json:"seed"`
	FailFast bool     `json:"fail_fast"`
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	suites, err := s.selectSuites(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(suites) == 0 {
		writeError(w, http.StatusBadRequest, "selection matches no chapters")
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed = s.Seed
	}
	s.execute(w, r, suites, seed, req.FailFast)
}

func (s *Server) selectSuites(req runRequest) ([]*check.Suite, error) {
	if len(req.IDs) > 0 {
		return s.Catalog.Select(req.IDs)
	}
	var variant check.Variant
	if req.Variant != "" {
		v, err := check.ParseVariant(req.Variant)
		if err != nil {
			return nil, err
		}
		variant = v
	}
	return s.Catalog.Filter(req.Book, variant), nil
}

// execute runs suites, records the report and writes it as the response.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, suites []*check.Suite, seed int64, failFast bool) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	opts := []engine.Option{
		engine.WithWorkers(s.Workers),
		engine.WithSeed(seed),
		engine.WithFailFast(failFast),
	}
	if s.Metrics != nil {
		opts = append(opts, engine.WithHooks(s.Metrics.Hooks()))
	}
	rep, err := engine.NewRunner(opts...).Run(r.Context(), suites)
	if err != nil {
		slog.Warn("on-demand run interrupted", "run", rep.RunID, "err", err)
		writeError(w, http.StatusServiceUnavailable, "run cancelled")
		return
	}
	s.record(r.Context(), rep)
	writeJSON(w, http.StatusOK, rep)
}

// record keeps rep as the latest report and hands it to the store and
// cache. Failures there are logged only.
func (s *Server) record(ctx context.Context, rep *engine.Report) {
	s.latestMu.Lock()
	s.latest = rep
	s.latestMu.Unlock()

	if s.Store != nil {
		if err := s.Store.SaveReport(rep); err != nil {
			slog.Error("failed to save run", "run", rep.RunID, "err", err)
		}
	}
	if s.Cache != nil {
		if err := s.Cache.Put(ctx, rep); err != nil {
			slog.Error("failed to cache run", "run", rep.RunID, "err", err)
		}
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history disabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, 500)
	}
	runs, err := s.Store.ListRuns(limit)
	if err != nil {
		slog.Error("list runs failed", "err", err)
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []persistence.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.Cache != nil {
		rep, err := s.Cache.Get(r.Context(), id)
		if err == nil {
			writeJSON(w, http.StatusOK, rep)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("cache lookup failed", "run", id, "err", err)
		}
	}
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history disabled")
		return
	}
	rep, err := s.Store.LoadRun(id)
	if errors.Is(err, persistence.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("load run failed", "err", err)
		writeError(w, http.StatusInternalServerError, "load run failed")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleDeleteRun removes a run from the store, the cache and memory.
// The ID may be a unique prefix.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history disabled")
		return
	}
	rep, err := s.Store.LoadRun(chi.URLParam(r, "id"))
	if errors.Is(err, persistence.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Store.DeleteRun(rep.RunID); err != nil {
		slog.Error("delete run failed", "run", rep.RunID, "err", err)
		writeError(w, http.StatusInternalServerError, "delete run failed")
		return
	}
	s.forget(r.Context(), rep.RunID)
	w.WriteHeader(http.StatusNoContent)
}

// forget drops every non-store copy of a deleted run.
func (s *Server) forget(ctx context.Context, runID string) {
	s.latestMu.Lock()
	if s.latest != nil && s.latest.RunID == runID {
		s.latest = nil
	}
	s.latestMu.Unlock()

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, runID); err != nil {
			slog.Warn("cache invalidation failed", "run", runID, "err", err)
		}
	}
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rep := s.latestReport(r.Context())
	if rep == nil {
		writeError(w, http.StatusNotFound, "no runs yet")
		return
	}
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(report.Markdown(rep)))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// latestReport returns the newest report known to memory, the cache or
// the store. The cache is shared with CLI runs, so memory alone can be
// stale.
func (s *Server) latestReport(ctx context.Context) *engine.Report {
	s.latestMu.Lock()
	newest := s.latest
	s.latestMu.Unlock()

	pick := func(rep *engine.Report) {
		if rep != nil && (newest == nil || rep.FinishedAt.After(newest.FinishedAt)) {
			newest = rep
		}
	}
	if s.Cache != nil {
		rep, err := s.Cache.Latest(ctx)
		switch {
		case err == nil:
			pick(rep)
		case !errors.Is(err, cache.ErrMiss):
			slog.Warn("cache lookup failed", "err", err)
		}
	}
	if s.Store != nil {
		rep, err := s.Store.LatestRun()
		switch {
		case err == nil:
			pick(rep)
		case !errors.Is(err, persistence.ErrRunNotFound):
			slog.Warn("store lookup failed", "err", err)
		}
	}
	return newest
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
