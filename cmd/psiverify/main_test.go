package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/engine"
)

func runCLI(t *testing.T, ctx context.Context, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func isolate(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "runs.db")
	t.Setenv("PSIVERIFY_DB", db)
	t.Setenv("PSIVERIFY_REDIS_ADDR", "")
	return db
}

func TestRunPassingChapterJSON(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, context.Background(),
		"run", "constants-001", "--format", "json", "--seed", "1", "--no-store")
	require.Equal(t, engine.ExitPass, code, out)

	var rep engine.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, int64(1), rep.Seed)
	require.Len(t, rep.Suites, 1)
	assert.Equal(t, check.VerdictPass, rep.Suites[0].Verdict)
}

func TestRunStrictViolationExitsTwo(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, context.Background(), "run", "structum-048-strict", "--no-store")
	assert.Equal(t, engine.ExitViolation, code)
	assert.Contains(t, out, "VIOLATION")
	assert.Contains(t, out, "1 strict violation")
}

func TestRunWholeCatalogStoresHistory(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, context.Background(), "run", "--seed", "20261015", "--workers", "4")
	assert.Equal(t, engine.ExitViolation, code, out)
	assert.Contains(t, out, "25 suites")

	code, out, _ = runCLI(t, context.Background(), "history", "--no-color")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Exit")

	code, out, _ = runCLI(t, context.Background(), "history", "--suite", "structum-048-strict")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "VIOLATION")

	code, _, errOut := runCLI(t, context.Background(), "history", "--run", "does-not-exist")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "run not found")
}

func TestHistoryDelete(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, context.Background(), "run", "constants-001", "--format", "json")
	require.Equal(t, 0, code, out)
	var rep engine.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	code, out, _ = runCLI(t, context.Background(), "history", "--delete", rep.RunID[:8])
	require.Equal(t, 0, code)
	assert.Contains(t, out, "deleted run "+rep.RunID)

	code, _, errOut := runCLI(t, context.Background(), "history", "--run", rep.RunID)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "run not found")

	code, _, errOut = runCLI(t, context.Background(), "history", "--delete", rep.RunID)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "run not found")
}

func TestRunSelectionErrors(t *testing.T) {
	isolate(t)
	code, _, errOut := runCLI(t, context.Background(), "run", "constants-999", "--no-store")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown chapter")

	code, _, errOut = runCLI(t, context.Background(), "run", "--book", "nothing", "--no-store")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no chapters match")

	code, _, _ = runCLI(t, context.Background(), "run", "--variant", "loose", "--no-store")
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, context.Background(), "run", "--format", "xml", "--no-store")
	assert.Equal(t, 1, code)
}

func TestRunCancelledExitsThree(t *testing.T) {
	isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code, out, _ := runCLI(t, ctx, "run", "constants-001", "--no-store")
	assert.Equal(t, engine.ExitCancelled, code)
	assert.Contains(t, out, "cancelled")
}

func TestListAndShow(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, context.Background(), "list", "--book", "structum", "--json")
	require.Equal(t, 0, code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 11)

	code, out, _ = runCLI(t, context.Background(), "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "scripts-zeta-equivalence")

	code, out, _ = runCLI(t, context.Background(), "show", "constants-029", "--raw")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "- ID: `constants-029`")

	code, out, _ = runCLI(t, context.Background(), "show", "constants-029")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "constants-029")

	code, _, _ = runCLI(t, context.Background(), "show")
	assert.Equal(t, 1, code)
}

func TestConfigFileAndFlags(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "psiverify.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 77\nlog_level: warn\n"), 0o644))

	code, out, _ := runCLI(t, context.Background(),
		"--config", path, "run", "constants-001", "--format", "json", "--no-store")
	require.Equal(t, 0, code)
	var rep engine.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, int64(77), rep.Seed)

	code, out, _ = runCLI(t, context.Background(),
		"--config", path, "run", "constants-001", "--format", "json", "--no-store", "--seed", "5")
	require.Equal(t, 0, code)
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, int64(5), rep.Seed)

	code, _, errOut := runCLI(t, context.Background(), "--log-level", "loud", "version")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "log level")
}

func TestVersion(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, context.Background(), "version")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "psiverify ")
}
