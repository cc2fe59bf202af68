package logstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

const parseConcurrency = 8

// LogStore discovers and parses the telemetry documents the sandbox runner
// drops into a directory. One document per monitored execution, either
// plain "*.json" or zstd-compressed "*.json.zst".
type LogStore struct {
	dir    string
	logger *slog.Logger

	parsed   *xsync.MapOf[string, cachedRecord]
	reported mapset.Set[string]
}

type cachedRecord struct {
	modTime time.Time
	record  Record
}

func New(dir string, logger *slog.Logger) *LogStore {
	return &LogStore{
		dir:      dir,
		logger:   logger,
		parsed:   xsync.NewMapOf[string, cachedRecord](),
		reported: mapset.NewSet[string](),
	}
}

// Count returns the number of telemetry documents currently present. It is
// the cheap invalidation signal for the feature cache; no file is opened.
func (s *LogStore) Count() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory %s: %w", s.dir, err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && isTelemetryFile(entry.Name()) {
			count++
		}
	}
	return count, nil
}

// Load parses every telemetry document in the directory and returns them
// most recent first. Unreadable or malformed documents are skipped; each
// one is logged the first time it is seen.
func (s *LogStore) Load() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory %s: %w", s.dir, err)
	}

	var mu sync.Mutex
	records := make([]Record, 0, len(entries))

	errs, _ := errgroup.WithContext(context.Background())
	errs.SetLimit(parseConcurrency)
	for _, entry := range entries {
		if entry.IsDir() || !isTelemetryFile(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		errs.Go(func() error {
			rec, ok := s.loadOne(path)
			if !ok {
				return nil
			}
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	_ = errs.Wait()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].ModTime.Equal(records[j].ModTime) {
			return records[i].ModTime.After(records[j].ModTime)
		}
		return records[i].Path < records[j].Path
	})

	return records, nil
}

func (s *LogStore) loadOne(path string) (Record, bool) {
	info, err := os.Stat(path)
	if err != nil {
		s.reportOnce(path, err)
		return Record{}, false
	}

	if cached, ok := s.parsed.Load(path); ok && cached.modTime.Equal(info.ModTime()) {
		return cached.record, true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.reportOnce(path, err)
		return Record{}, false
	}

	if strings.HasSuffix(path, ".zst") {
		data, err = decompress(data)
		if err != nil {
			s.reportOnce(path, err)
			return Record{}, false
		}
	}

	rec, err := parseRecord(data, path, info.ModTime())
	if err != nil {
		s.reportOnce(path, err)
		return Record{}, false
	}

	s.parsed.Store(path, cachedRecord{modTime: info.ModTime(), record: rec})
	return rec, true
}

func (s *LogStore) reportOnce(path string, err error) {
	if s.reported.Add(path) {
		s.logger.Warn("skipping telemetry document",
			"path", path, "error", err)
	}
}

func decompress(data []byte) ([]byte, error) {
	d, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer d.Close()
	out, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress document: %w", err)
	}
	return out, nil
}

func isTelemetryFile(name string) bool {
	return strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.zst")
}
