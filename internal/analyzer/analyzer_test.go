package analyzer_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/programme-lv/analyzer/api"
	"github.com/programme-lv/analyzer/internal/analyzer"
	"github.com/programme-lv/analyzer/internal/classify"
	"github.com/programme-lv/analyzer/internal/fcache"
	"github.com/programme-lv/analyzer/internal/logstore"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T, dir string) *analyzer.Analyzer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := logstore.New(dir, logger)
	classifier := classify.New(classify.DefaultRules())
	cache := fcache.New(store, classifier, logger)
	return analyzer.New(cache, classifier, logger)
}

func writeDoc(t *testing.T, dir string, name string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestQuietRunScenario(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "run1.json", `{
		"profile": "strict",
		"program": "./hello",
		"summary": {
			"runtime_ms": 10, "peak_cpu": 5, "peak_memory_kb": 200,
			"page_faults_minor": 10, "page_faults_major": 0,
			"exit_reason": "EXITED(0)"
		}
	}`)

	a := newAnalyzer(t, dir)

	s := a.Stats()
	require.Equal(t, 1, s.TotalRuns)
	require.Equal(t, 5.0, s.AvgCpuPercent)
	require.Equal(t, 0, s.SyscallViolations)

	runs := a.Runs(0)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].Prediction)
	require.NotNil(t, runs[0].Confidence)
	require.NotNil(t, runs[0].Reason)
	require.Equal(t, "Normal behavior", *runs[0].Reason)
}

func TestViolationRunScenario(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "run1.json", `{
		"profile": "strict",
		"program": "./evil",
		"summary": {
			"runtime_ms": 120, "peak_cpu": 95, "peak_memory_kb": 800,
			"page_faults_minor": 40, "page_faults_major": 0,
			"exit_reason": "VIOLATION:execve", "blocked_syscall": "execve"
		}
	}`)

	a := newAnalyzer(t, dir)

	s := a.Stats()
	require.Equal(t, 1, s.SyscallViolations)
	require.Equal(t, 1, s.SyscallFrequency["execve"])

	runs := a.Runs(0)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].Reason)
	require.Contains(t, *runs[0].Reason, "High CPU")
	require.Contains(t, *runs[0].Reason, "Syscall Violation")
}

func TestStatsReflectNewRecords(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "run1.json", `{"profile":"strict","summary":{"peak_cpu":10,"exit_reason":"EXITED(0)"}}`)

	a := newAnalyzer(t, dir)
	require.Equal(t, 1, a.Stats().TotalRuns)
	require.Equal(t, 1, a.Stats().TotalRuns)

	writeDoc(t, dir, "run2.json", `{"profile":"strict","summary":{"peak_cpu":20,"exit_reason":"EXITED(0)"}}`)
	require.Equal(t, 2, a.Stats().TotalRuns)
}

func TestRunsLimitAndOrdering(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"a.json", "b.json", "c.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path,
			[]byte(`{"profile":"strict","program":"`+name+`","summary":{"exit_reason":"EXITED(0)"}}`), 0644))
		mtime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}

	a := newAnalyzer(t, dir)

	runs := a.Runs(2)
	require.Len(t, runs, 2)
	require.Equal(t, "c.json", runs[0].Program)
	require.Equal(t, "b.json", runs[1].Program)
}

func TestDegradesToEmptyOnMissingDirectory(t *testing.T) {
	a := newAnalyzer(t, filepath.Join(t.TempDir(), "does-not-exist"))

	require.Equal(t, api.EmptyStatistics(), a.Stats())

	runs := a.Runs(0)
	require.NotNil(t, runs)
	require.Empty(t, runs)

	info := a.ModelInfo()
	require.True(t, info.IsTrained)
	require.Equal(t, "random_forest", info.Kind)
}
