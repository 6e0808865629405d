package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/psi-verify/internal/cache"
	"github.com/talgya/psi-verify/internal/chapters"
	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
	"github.com/talgya/psi-verify/internal/metrics"
	"github.com/talgya/psi-verify/internal/persistence"
)

func testCatalog(t *testing.T) *chapters.Catalog {
	t.Helper()
	ok := func(c *check.C) { c.AlmostEqual(1.618, 1.618, 0) }
	cat, err := chapters.NewCatalog(
		func() *check.Suite {
			return &check.Suite{ID: "constants-001", Book: chapters.BookConstants, Chapter: 1,
				Variant: check.VariantBase, Title: "Foundations",
				Constants: []check.Constant{{Name: "golden ratio", Symbol: "φ", Value: 1.618}},
				Checks:    []check.Check{{Name: "phi", Doc: "φ² = φ + 1", Fn: ok}}}
		},
		func() *check.Suite {
			return &check.Suite{ID: "structum-048-strict", Book: chapters.BookStructum, Chapter: 48,
				Variant: check.VariantStrict, Violations: []string{"fitted"},
				Checks: []check.Check{{Name: "ratio", Fn: ok}}}
		},
	)
	require.NoError(t, err)
	return cat
}

type fixture struct {
	srv     *Server
	handler http.Handler
	db      *persistence.DB
	mr      *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	c := cache.NewFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { c.Close() })

	srv := &Server{
		Catalog:  testCatalog(t),
		Store:    db,
		Cache:    c,
		Metrics:  metrics.New(),
		AdminKey: "secret",
		Workers:  2,
		Seed:     11,
	}
	return &fixture{srv: srv, handler: srv.Handler(), db: db, mr: mr}
}

func (f *fixture) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "GET", "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[map[string]any](t, rec)
	assert.Equal(t, 2.0, st["suites"])
	assert.Equal(t, true, st["admin_auth"])
	assert.NotContains(t, st, "last_run")
}

func TestChapters(t *testing.T) {
	f := newFixture(t)

	list := decode[[]chapterSummary](t, f.do(t, "GET", "/api/v1/chapters", ""))
	require.Len(t, list, 2)
	assert.Equal(t, "constants-001", list[0].ID)

	strict := decode[[]chapterSummary](t, f.do(t, "GET", "/api/v1/chapters?variant=strict", ""))
	require.Len(t, strict, 1)
	assert.Equal(t, 1, strict[0].Violations)

	assert.Equal(t, http.StatusBadRequest, f.do(t, "GET", "/api/v1/chapters?variant=loose", "").Code)

	rec := f.do(t, "GET", "/api/v1/chapters/constants-001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[map[string]any](t, rec)
	assert.Contains(t, detail["markdown"], "## Constants")
	assert.Len(t, detail["checks"], 1)

	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/api/v1/chapters/nope", "").Code)
}

func TestRunChapterStoresAndCaches(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "POST", "/api/v1/chapters/structum-048-strict/run?seed=5", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rep := decode[engine.Report](t, rec)
	assert.Equal(t, int64(5), rep.Seed)
	assert.Equal(t, engine.ExitViolation, rep.ExitCode())

	stored, err := f.db.LoadRun(rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, rep.Stats, stored.Stats)
	assert.True(t, f.mr.Exists("psiverify:report:latest"))

	latest := decode[engine.Report](t, f.do(t, "GET", "/api/v1/report/latest", ""))
	assert.Equal(t, rep.RunID, latest.RunID)

	md := f.do(t, "GET", "/api/v1/report/latest?format=markdown", "")
	assert.Contains(t, md.Body.String(), "# Run "+rep.RunID)

	runs := decode[[]persistence.RunSummary](t, f.do(t, "GET", "/api/v1/runs?limit=5", ""))
	require.Len(t, runs, 1)
	assert.Equal(t, rep.RunID, runs[0].ID)

	one := f.do(t, "GET", "/api/v1/runs/"+rep.RunID, "")
	assert.Equal(t, http.StatusOK, one.Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/api/v1/runs/missing", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "GET", "/api/v1/runs?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, "POST", "/api/v1/chapters/constants-001/run?seed=x", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, "POST", "/api/v1/chapters/nope/run", "").Code)
}

func TestLatestFallsBackToCache(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/api/v1/report/latest", "").Code)

	rep := &engine.Report{RunID: "cached-run", Seed: 3}
	require.NoError(t, f.srv.Cache.Put(context.Background(), rep))

	got := decode[engine.Report](t, f.do(t, "GET", "/api/v1/report/latest", ""))
	assert.Equal(t, "cached-run", got.RunID)
}

func TestLatestPrefersNewerCachedRun(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/api/v1/chapters/constants-001/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	served := decode[engine.Report](t, rec)

	// A CLI run publishing through the shared cache after the server's own run.
	cli := &engine.Report{RunID: "cli-run", Seed: 4,
		StartedAt: served.FinishedAt.Add(time.Minute), FinishedAt: served.FinishedAt.Add(2 * time.Minute)}
	require.NoError(t, f.srv.Cache.Put(context.Background(), cli))

	got := decode[engine.Report](t, f.do(t, "GET", "/api/v1/report/latest", ""))
	assert.Equal(t, "cli-run", got.RunID)

	st := decode[map[string]any](t, f.do(t, "GET", "/api/v1/status", ""))
	last := st["last_run"].(map[string]any)
	assert.Equal(t, "cli-run", last["run_id"])

	// An older cached report does not shadow the server's own run.
	require.NoError(t, f.srv.Cache.Put(context.Background(), &engine.Report{RunID: "stale"}))
	got = decode[engine.Report](t, f.do(t, "GET", "/api/v1/report/latest", ""))
	assert.Equal(t, served.RunID, got.RunID)
}

func TestStatusCountsVerdicts(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/api/v1/runs", `{}`, "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, rec.Code)

	st := decode[map[string]any](t, f.do(t, "GET", "/api/v1/status", ""))
	last := st["last_run"].(map[string]any)
	assert.Equal(t, map[string]any{"pass": 1.0, "violation": 1.0}, last["verdicts"])
	assert.Equal(t, 2.0, last["exit_code"])
}

func TestRunServedFromCache(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.srv.Cache.Put(context.Background(), &engine.Report{RunID: "only-cached", Seed: 8}))

	rec := f.do(t, "GET", "/api/v1/runs/only-cached", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(8), decode[engine.Report](t, rec).Seed)
}

func TestDeleteRun(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "POST", "/api/v1/chapters/constants-001/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rep := decode[engine.Report](t, rec)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, "DELETE", "/api/v1/runs/"+rep.RunID, "").Code)

	rec = f.do(t, "DELETE", "/api/v1/runs/"+rep.RunID[:8], "", "Authorization", "Bearer secret")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/api/v1/runs/"+rep.RunID, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/api/v1/report/latest", "").Code)
	assert.False(t, f.mr.Exists("psiverify:report:latest"))
	assert.False(t, f.mr.Exists("psiverify:report:"+rep.RunID))

	assert.Equal(t, http.StatusNotFound,
		f.do(t, "DELETE", "/api/v1/runs/"+rep.RunID, "", "Authorization", "Bearer secret").Code)
}

func TestAdminRun(t *testing.T) {
	f := newFixture(t)
	body := `{"ids": ["constants-001"], "seed": 9}`

	assert.Equal(t, http.StatusUnauthorized, f.do(t, "POST", "/api/v1/runs", body).Code)
	assert.Equal(t, http.StatusUnauthorized,
		f.do(t, "POST", "/api/v1/runs", body, "Authorization", "Bearer wrong").Code)

	rec := f.do(t, "POST", "/api/v1/runs", body, "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rep := decode[engine.Report](t, rec)
	assert.Equal(t, int64(9), rep.Seed)
	require.Len(t, rep.Suites, 1)
	assert.Equal(t, check.VerdictPass, rep.Suites[0].Verdict)

	rec = f.do(t, "POST", "/api/v1/runs", `{"book": "structum"}`, "Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "structum-048-strict", decode[engine.Report](t, rec).Suites[0].ID)

	assert.Equal(t, http.StatusBadRequest,
		f.do(t, "POST", "/api/v1/runs", `{"ids": ["nope"]}`, "Authorization", "Bearer secret").Code)
	assert.Equal(t, http.StatusBadRequest,
		f.do(t, "POST", "/api/v1/runs", `{"book": "none"}`, "Authorization", "Bearer secret").Code)
	assert.Equal(t, http.StatusBadRequest,
		f.do(t, "POST", "/api/v1/runs", `{`, "Authorization", "Bearer secret").Code)

	f.srv.AdminKey = ""
	assert.Equal(t, http.StatusForbidden,
		f.do(t, "POST", "/api/v1/runs", body, "Authorization", "Bearer secret").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, "POST", "/api/v1/chapters/constants-001/run", "")

	rec := f.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `psiverify_checks_total{book="constants",outcome="pass"} 1`)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "OPTIONS", "/api/v1/status", "", "Origin", "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(t, "GET", "/api/v1/status", "", "Origin", "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithoutStore(t *testing.T) {
	srv := &Server{Catalog: testCatalog(t)}
	h := srv.Handler()
	for _, path := range []string{"/api/v1/runs", "/api/v1/runs/x"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunEndpointIsRateLimited(t *testing.T) {
	f := newFixture(t)
	f.srv.RunLimiter = NewRateLimiter(2, time.Hour)
	f.handler = f.srv.Handler()

	for range 2 {
		assert.Equal(t, http.StatusOK, f.do(t, "POST", "/api/v1/chapters/constants-001/run", "").Code)
	}
	rec := f.do(t, "POST", "/api/v1/chapters/constants-001/run", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
