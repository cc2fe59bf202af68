package api

// ProfileStats aggregates runs that were executed under the same sandbox profile
type ProfileStats struct {
	Count    int     `json:"count"`
	AvgCpu   float64 `json:"avg_cpu"`
	AvgMemKb float64 `json:"avg_mem"`
}

// Statistics is the aggregate view over every ingested telemetry record
type Statistics struct {
	TotalRuns int `json:"total_runs"`

	ByProfile    map[string]ProfileStats `json:"by_profile"`
	ByExitReason map[string]int          `json:"by_exit_reason"`

	// Runs whose exit reason reports a seccomp violation
	SyscallViolations int `json:"syscall_violations"`

	// Blocked syscall name -> number of runs it was blocked in
	SyscallFrequency map[string]int `json:"syscall_frequency"`

	AvgRuntimeMs  float64 `json:"avg_runtime_ms"`
	AvgCpuPercent float64 `json:"avg_cpu_percent"`
	AvgMemoryKb   float64 `json:"avg_memory_kb"`
}

// EmptyStatistics returns the zero-valued statistics payload. Callers that
// fail internally respond with this instead of propagating the fault.
func EmptyStatistics() Statistics {
	return Statistics{
		ByProfile:        map[string]ProfileStats{},
		ByExitReason:     map[string]int{},
		SyscallFrequency: map[string]int{},
	}
}
