// Package alert defines where risk alerts go once the classifier flags a
// run. Implementations exist for NATS, SQS and the terminal.
package alert

import "github.com/programme-lv/analyzer/api"

type Sink interface {
	RiskDetected(alert api.RiskAlert) error
}
