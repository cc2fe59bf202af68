// Package features projects raw telemetry records onto the fixed-schema
// rows consumed by the statistics engine and the risk classifier.
package features

import (
	"time"

	"github.com/programme-lv/analyzer/internal/logstore"
)

// Row is the fully-typed projection of one telemetry record. Runtime,
// memory and fault counts are non-negative; PeakCpu is clamped to [0,100];
// MemGrowthRate is the only signal that may be negative.
type Row struct {
	Profile        string
	Program        string
	ExitReason     string
	BlockedSyscall string

	RuntimeMs       float64
	PeakCpu         float64
	PeakMemoryKb    float64
	PageFaultsMinor float64
	PageFaultsMajor float64

	// Derived from the timeline sample series. Not part of the classifier
	// input vector; computed for display and future use.
	MemGrowthRate float64
	CpuVariance   float64

	SourcePath string
	ObservedAt time.Time
}

// Extract maps records to feature rows, preserving order. It is pure:
// extracting the same records twice yields identical rows.
func Extract(records []logstore.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, extractOne(rec))
	}
	return rows
}

func extractOne(rec logstore.Record) Row {
	return Row{
		Profile:        rec.Profile,
		Program:        rec.Program,
		ExitReason:     rec.ExitReason,
		BlockedSyscall: rec.BlockedSyscall,

		RuntimeMs:       nonNegative(rec.RuntimeMs),
		PeakCpu:         clamp(rec.PeakCpu, 0, 100),
		PeakMemoryKb:    nonNegative(rec.PeakMemoryKb),
		PageFaultsMinor: nonNegative(rec.PageFaultsMinor),
		PageFaultsMajor: nonNegative(rec.PageFaultsMajor),

		MemGrowthRate: slope(rec.MemorySamples),
		CpuVariance:   variance(rec.CpuSamples),

		SourcePath: rec.Path,
		ObservedAt: rec.ModTime,
	}
}

// slope fits an ordinary least squares line over the samples against their
// index and returns its gradient. Fewer than two samples, or a series with
// zero variance, yields exactly 0.
func slope(samples []float64) float64 {
	n := float64(len(samples))
	if n < 2 {
		return 0
	}
	if variance(samples) == 0 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range samples {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// variance is the population variance of the samples, 0 for an empty series.
func variance(samples []float64) float64 {
	n := float64(len(samples))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / n
	var sq float64
	for _, v := range samples {
		d := v - mean
		sq += d * d
	}
	return sq / n
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
