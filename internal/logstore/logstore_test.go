package logstore_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/analyzer/internal/logstore"
	"github.com/stretchr/testify/require"
)

const nestedDoc = `{
	"profile": "strict",
	"program": "./a.out",
	"summary": {
		"runtime_ms": 10,
		"peak_cpu": 5,
		"peak_memory_kb": 200,
		"page_faults_minor": 10,
		"page_faults_major": 0,
		"exit_reason": "EXITED(0)"
	},
	"timeline": {"memory_kb": [100, 200, 300], "cpu_percent": [1, 4, 5]}
}`

// older runner builds wrote the summary fields flat with different names
const flatDoc = `{
	"profile": "lenient",
	"program": "calc",
	"runtime_ms": 50,
	"cpu_usage_percent": 10,
	"memory_peak_kb": 1024,
	"page_faults_minor": 50,
	"exit_reason": "SIGNALED(9)"
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, dir string, name string, content []byte, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestCountAndLoad(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeDoc(t, dir, "run1.json", []byte(nestedDoc), base)
	writeDoc(t, dir, "run2.json", []byte(flatDoc), base.Add(time.Minute))
	writeDoc(t, dir, "broken.json", []byte(`{not json`), base.Add(2*time.Minute))
	writeDoc(t, dir, "notes.txt", []byte("not telemetry"), base)

	store := logstore.New(dir, discardLogger())

	count, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 3, count)

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 2) // broken.json skipped, never fatal

	// most recent first
	require.Equal(t, "lenient", records[0].Profile)
	require.Equal(t, "strict", records[1].Profile)

	// flat legacy aliases resolve
	require.Equal(t, 10.0, records[0].PeakCpu)
	require.Equal(t, 1024.0, records[0].PeakMemoryKb)
	require.Equal(t, "SIGNALED(9)", records[0].ExitReason)

	// nested summary resolves
	require.Equal(t, 10.0, records[1].RuntimeMs)
	require.Equal(t, 5.0, records[1].PeakCpu)
	require.Equal(t, []float64{100, 200, 300}, records[1].MemorySamples)
	require.Equal(t, []float64{1, 4, 5}, records[1].CpuSamples)
}

func TestMissingFieldsDefaultToZero(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "sparse.json", []byte(`{"profile":"strict"}`), time.Now())

	store := logstore.New(dir, discardLogger())
	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, "strict", rec.Profile)
	require.Equal(t, 0.0, rec.RuntimeMs)
	require.Equal(t, 0.0, rec.PeakCpu)
	require.Equal(t, "", rec.ExitReason)
	require.Empty(t, rec.MemorySamples)
}

func TestLoadZstdDocument(t *testing.T) {
	dir := t.TempDir()

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll([]byte(nestedDoc), nil)
	require.NoError(t, enc.Close())

	writeDoc(t, dir, "run1.json.zst", compressed, time.Now())

	store := logstore.New(dir, discardLogger())

	count, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "strict", records[0].Profile)
	require.Equal(t, 200.0, records[0].PeakMemoryKb)
}

func TestRepeatedLoadsAreStable(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "run1.json", []byte(nestedDoc), time.Now().Add(-time.Minute))
	writeDoc(t, dir, "run2.json", []byte(flatDoc), time.Now())

	store := logstore.New(dir, discardLogger())

	first, err := store.Load()
	require.NoError(t, err)
	second, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, first, second)
}
