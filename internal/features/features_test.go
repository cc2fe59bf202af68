package features_test

import (
	"testing"

	"github.com/programme-lv/analyzer/internal/features"
	"github.com/programme-lv/analyzer/internal/logstore"
	"github.com/stretchr/testify/require"
)

func TestMemGrowthRate(t *testing.T) {
	rows := features.Extract([]logstore.Record{
		{MemorySamples: nil},
		{MemorySamples: []float64{500}},
		{MemorySamples: []float64{500, 500, 500}},
		{MemorySamples: []float64{100, 200, 300}},
		{MemorySamples: []float64{300, 200, 100}},
	})
	require.Len(t, rows, 5)

	// fewer than two samples and zero-variance series are defined as 0
	require.Equal(t, 0.0, rows[0].MemGrowthRate)
	require.Equal(t, 0.0, rows[1].MemGrowthRate)
	require.Equal(t, 0.0, rows[2].MemGrowthRate)

	require.InDelta(t, 100.0, rows[3].MemGrowthRate, 1e-9)
	require.InDelta(t, -100.0, rows[4].MemGrowthRate, 1e-9)
}

func TestCpuVariance(t *testing.T) {
	rows := features.Extract([]logstore.Record{
		{CpuSamples: nil},
		{CpuSamples: []float64{50, 50, 50}},
		{CpuSamples: []float64{0, 50, 100}},
	})

	require.Equal(t, 0.0, rows[0].CpuVariance)
	require.Equal(t, 0.0, rows[1].CpuVariance)
	require.InDelta(t, 5000.0/3.0, rows[2].CpuVariance, 1e-9)
}

func TestNumericInvariants(t *testing.T) {
	rows := features.Extract([]logstore.Record{
		{RuntimeMs: -5, PeakCpu: 150, PeakMemoryKb: -1, PageFaultsMinor: -10},
		{PeakCpu: -3},
	})

	require.Equal(t, 0.0, rows[0].RuntimeMs)
	require.Equal(t, 100.0, rows[0].PeakCpu)
	require.Equal(t, 0.0, rows[0].PeakMemoryKb)
	require.Equal(t, 0.0, rows[0].PageFaultsMinor)
	require.Equal(t, 0.0, rows[1].PeakCpu)
}

func TestExtractIsIdempotent(t *testing.T) {
	records := []logstore.Record{
		{
			Profile:         "strict",
			Program:         "./a.out",
			RuntimeMs:       10,
			PeakCpu:         5,
			PeakMemoryKb:    200,
			PageFaultsMinor: 10,
			ExitReason:      "EXITED(0)",
			MemorySamples:   []float64{100, 150, 220},
			CpuSamples:      []float64{1, 4, 5},
		},
		{
			Profile:    "lenient",
			ExitReason: "VIOLATION:execve",
		},
	}

	first := features.Extract(records)
	second := features.Extract(records)
	require.Equal(t, first, second)

	// ordering matches input ordering
	require.Equal(t, "strict", first[0].Profile)
	require.Equal(t, "lenient", first[1].Profile)
}
