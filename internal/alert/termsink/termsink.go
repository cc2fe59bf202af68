package termsink

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/programme-lv/analyzer/api"
)

var (
	malicious = color.New(color.FgRed, color.Bold)
	buggy     = color.New(color.FgYellow)
)

type termSink struct{}

// New creates a sink that prints risk alerts to stdout.
func New() *termSink { return &termSink{} }

func (t *termSink) RiskDetected(alert api.RiskAlert) error {
	label := ""
	if alert.Run.Prediction != nil {
		label = *alert.Run.Prediction
	}
	paint := buggy
	if label == "Malicious" {
		paint = malicious
	}

	paint.Printf("[%s]", label)
	fmt.Printf(" %s (profile=%s)\n", alert.Run.Program, alert.Run.Profile)
	if alert.Run.Confidence != nil {
		fmt.Printf("  confidence: %.1f%%\n", *alert.Run.Confidence)
	}
	if alert.Run.Reason != nil {
		fmt.Printf("  reason: %s\n", *alert.Run.Reason)
	}
	fmt.Printf("  exit: %s cpu=%.0f%% mem=%.0fKB source=%s\n",
		alert.Run.ExitReason, alert.Run.PeakCpu, alert.Run.PeakMemoryKb, alert.Run.SourcePath)
	return nil
}
