// Package stats aggregates feature rows into the operational statistics
// payload served to the presentation layer.
package stats

import (
	"strings"

	"github.com/programme-lv/analyzer/api"
	"github.com/programme-lv/analyzer/internal/features"
)

// Aggregate computes grouped counts and arithmetic means over the feature
// table. An empty table yields zero totals and empty maps, never an error.
func Aggregate(rows []features.Row) api.Statistics {
	result := api.EmptyStatistics()
	result.TotalRuns = len(rows)
	if len(rows) == 0 {
		return result
	}

	type profileAccum struct {
		count int
		cpu   float64
		mem   float64
	}
	profiles := map[string]*profileAccum{}

	var sumRuntime, sumCpu, sumMem float64

	for _, row := range rows {
		profile := row.Profile
		if profile == "" {
			profile = "UNKNOWN"
		}
		acc, ok := profiles[profile]
		if !ok {
			acc = &profileAccum{}
			profiles[profile] = acc
		}
		acc.count++
		acc.cpu += row.PeakCpu
		acc.mem += row.PeakMemoryKb

		exitReason := row.ExitReason
		if exitReason == "" {
			exitReason = "UNKNOWN"
		}
		result.ByExitReason[exitReason]++

		if strings.Contains(row.ExitReason, "VIOLATION") {
			result.SyscallViolations++
		}
		if row.BlockedSyscall != "" {
			result.SyscallFrequency[row.BlockedSyscall]++
		}

		sumRuntime += row.RuntimeMs
		sumCpu += row.PeakCpu
		sumMem += row.PeakMemoryKb
	}

	total := float64(len(rows))
	result.AvgRuntimeMs = sumRuntime / total
	result.AvgCpuPercent = sumCpu / total
	result.AvgMemoryKb = sumMem / total

	for name, acc := range profiles {
		result.ByProfile[name] = api.ProfileStats{
			Count:    acc.count,
			AvgCpu:   acc.cpu / float64(acc.count),
			AvgMemKb: acc.mem / float64(acc.count),
		}
	}

	return result
}
