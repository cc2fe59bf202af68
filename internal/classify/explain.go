package classify

import (
	"strings"

	"github.com/programme-lv/analyzer/internal/features"
)

// Rules is the deterministic cross-check that accompanies every statistical
// prediction. It is independent of the fitted model: the two layers may
// disagree, and callers present both verdicts.
type Rules struct {
	HighCpuPercent  float64 `toml:"high_cpu_percent"`
	HighMemoryKb    float64 `toml:"high_memory_kb"`
	HighMinorFaults float64 `toml:"high_minor_faults"`
}

func DefaultRules() Rules {
	return Rules{
		HighCpuPercent:  80,
		HighMemoryKb:    100000,
		HighMinorFaults: 1000,
	}
}

// Explain accumulates every rule that fires for the row. No rule firing
// reports "Normal behavior".
func (r Rules) Explain(row features.Row) string {
	var reasons []string
	if row.PeakCpu > r.HighCpuPercent {
		reasons = append(reasons, "High CPU")
	}
	if row.PeakMemoryKb > r.HighMemoryKb {
		reasons = append(reasons, "High Memory")
	}
	if row.PageFaultsMinor > r.HighMinorFaults {
		reasons = append(reasons, "High Activity")
	}
	if strings.Contains(row.ExitReason, "VIOLATION") {
		reasons = append(reasons, "Syscall Violation")
	}

	if len(reasons) == 0 {
		return "Normal behavior"
	}
	return strings.Join(reasons, " + ")
}
