// Package analyzer ties the pipeline together and builds the payloads the
// presentation layer consumes. Every method returns a structurally valid
// payload: internal faults are logged and degrade to the empty form.
package analyzer

import (
	"log/slog"
	"time"

	"github.com/programme-lv/analyzer/api"
	"github.com/programme-lv/analyzer/internal/classify"
	"github.com/programme-lv/analyzer/internal/fcache"
	"github.com/programme-lv/analyzer/internal/features"
	"github.com/programme-lv/analyzer/internal/stats"
)

type Analyzer struct {
	cache      *fcache.Cache
	classifier *classify.Classifier
	logger     *slog.Logger
}

func New(cache *fcache.Cache, classifier *classify.Classifier, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		cache:      cache,
		classifier: classifier,
		logger:     logger,
	}
}

// Stats aggregates the current feature table.
func (a *Analyzer) Stats() api.Statistics {
	rows, err := a.cache.Rows()
	if err != nil {
		a.logger.Error("failed to build feature table", "error", err)
		return api.EmptyStatistics()
	}
	return stats.Aggregate(rows)
}

// Runs returns the enriched per-run table, most recent first. limit <= 0
// returns every run.
func (a *Analyzer) Runs(limit int) []api.RunRow {
	rows, err := a.cache.Rows()
	if err != nil {
		a.logger.Error("failed to build feature table", "error", err)
		return []api.RunRow{}
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]api.RunRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, a.enrich(row))
	}
	return out
}

// ModelInfo describes the classifier backing the prediction fields.
func (a *Analyzer) ModelInfo() api.ModelInfo {
	return a.classifier.Info()
}

// enrich attaches the prediction, confidence and reason to a run. A row
// whose prediction fails is returned without the enrichment fields rather
// than dropped.
func (a *Analyzer) enrich(row features.Row) api.RunRow {
	run := api.RunRow{
		Profile:        row.Profile,
		Program:        row.Program,
		ExitReason:     row.ExitReason,
		BlockedSyscall: row.BlockedSyscall,

		RuntimeMs:       row.RuntimeMs,
		PeakCpu:         row.PeakCpu,
		PeakMemoryKb:    row.PeakMemoryKb,
		PageFaultsMinor: row.PageFaultsMinor,
		PageFaultsMajor: row.PageFaultsMajor,
		MemGrowthRate:   row.MemGrowthRate,
		CpuVariance:     row.CpuVariance,

		SourcePath: row.SourcePath,
		ObservedAt: row.ObservedAt.Format(time.RFC3339),
	}

	pred, err := a.classifier.Predict(row)
	if err != nil {
		a.logger.Warn("prediction failed for run",
			"source", row.SourcePath, "error", err)
		return run
	}

	label := string(pred.Label)
	confidence := pred.Confidence
	reason := a.classifier.Explain(row)

	run.Prediction = &label
	run.Confidence = &confidence
	run.Reason = &reason
	return run
}
