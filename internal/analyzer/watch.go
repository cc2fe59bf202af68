package analyzer

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/analyzer/api"
	"github.com/programme-lv/analyzer/internal/alert"
	"github.com/programme-lv/analyzer/internal/classify"
)

// Watch polls the telemetry source and publishes a risk alert for every
// newly observed run whose label is not Benign. Runs already present when
// the watch starts do not alert.
func (a *Analyzer) Watch(ctx context.Context, interval time.Duration, sink alert.Sink) error {
	seen := mapset.NewSet[string]()

	if rows, err := a.cache.Rows(); err == nil {
		for _, row := range rows {
			seen.Add(row.SourcePath)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		rows, err := a.cache.Rows()
		if err != nil {
			a.logger.Error("failed to refresh feature table", "error", err)
			continue
		}

		for _, row := range rows {
			if !seen.Add(row.SourcePath) {
				continue
			}
			run := a.enrich(row)
			if run.Prediction == nil || *run.Prediction == string(classify.Benign) {
				continue
			}
			if err := sink.RiskDetected(api.NewRiskAlert(run)); err != nil {
				a.logger.Error("failed to publish risk alert",
					"source", row.SourcePath, "error", err)
			}
		}
	}
}
