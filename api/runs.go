package api

// RunRow is one monitored execution enriched with the classifier's verdict.
// The three enrichment fields are nil when prediction failed for the row;
// the row itself is still returned.
type RunRow struct {
	Profile        string `json:"profile"`
	Program        string `json:"program"`
	ExitReason     string `json:"exit_reason"`
	BlockedSyscall string `json:"blocked_syscall,omitempty"`

	RuntimeMs       float64 `json:"runtime_ms"`
	PeakCpu         float64 `json:"peak_cpu"`
	PeakMemoryKb    float64 `json:"peak_memory_kb"`
	PageFaultsMinor float64 `json:"page_faults_minor"`
	PageFaultsMajor float64 `json:"page_faults_major"`
	MemGrowthRate   float64 `json:"mem_growth_rate"`
	CpuVariance     float64 `json:"cpu_variance"`

	SourcePath string `json:"source_path"`
	ObservedAt string `json:"observed_at"`

	Prediction *string  `json:"prediction,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Reason     *string  `json:"reason,omitempty"`
}

// ModelInfo describes the classifier behind the prediction fields
type ModelInfo struct {
	Kind      string   `json:"kind"`
	Features  []string `json:"features"`
	IsTrained bool     `json:"is_trained"`
}
