package natssink

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/analyzer/api"
)

type natsSink struct {
	nc      *nats.Conn
	subject string
}

// New creates a sink that publishes risk alerts to the given NATS subject.
func New(nc *nats.Conn, subject string) *natsSink {
	return &natsSink{nc: nc, subject: subject}
}

func (s *natsSink) RiskDetected(alert api.RiskAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := s.nc.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish alert to %s: %w", s.subject, err)
	}
	return nil
}
