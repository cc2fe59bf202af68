package api

import (
	"time"

	"github.com/google/uuid"
)

// RiskAlert is published to a sink whenever a newly ingested run is
// classified as something other than Benign.
type RiskAlert struct {
	AlertUuid string `json:"alert_uuid"`
	EmittedAt string `json:"emitted_at"`

	Run RunRow `json:"run"`
}

func NewRiskAlert(run RunRow) RiskAlert {
	return RiskAlert{
		AlertUuid: uuid.New().String(),
		EmittedAt: time.Now().Format(time.RFC3339),
		Run:       run,
	}
}
