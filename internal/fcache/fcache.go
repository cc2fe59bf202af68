// Package fcache memoizes the extracted feature table so repeated queries
// do not re-parse the log directory. It is the only stateful component in
// the pipeline; everything downstream is a pure function of its table.
package fcache

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/programme-lv/analyzer/internal/features"
	"github.com/programme-lv/analyzer/internal/logstore"
)

// Source provides the raw records plus a cheap change signal.
type Source interface {
	Count() (int, error)
	Load() ([]logstore.Record, error)
}

// Trainer is retrained synchronously whenever the table is rebuilt, so
// aggregates and predictions served within one epoch never skew.
type Trainer interface {
	Train(rows []features.Row)
}

type Cache struct {
	source  Source
	trainer Trainer
	logger  *slog.Logger

	mu          sync.Mutex
	rows        []features.Row
	sourceCount int
	primed      bool
	epoch       uint64
}

func New(source Source, trainer Trainer, logger *slog.Logger) *Cache {
	return &Cache{source: source, trainer: trainer, logger: logger}
}

// Rows returns the feature table for the current invalidation epoch. The
// record count is re-read on every call; an unchanged count returns the
// cached table as-is. The count check, rebuild, swap and retrain run under
// one lock, so concurrent callers never recompute redundantly or observe a
// half-updated cache.
func (c *Cache) Rows() ([]features.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count, err := c.source.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count telemetry records: %w", err)
	}
	if c.primed && count == c.sourceCount {
		return c.rows, nil
	}

	records, err := c.source.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load telemetry records: %w", err)
	}

	c.rows = features.Extract(records)
	c.sourceCount = count
	c.primed = true
	c.epoch++

	c.trainer.Train(c.rows)

	c.logger.Info("feature table rebuilt",
		"records", len(c.rows), "epoch", c.epoch)

	return c.rows, nil
}

// Epoch reports how many times the table has been rebuilt.
func (c *Cache) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}
