package sqssink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/analyzer/api"
)

type sqsSink struct {
	client   *sqs.Client
	queueUrl string
}

// New creates a sink that sends risk alerts to an SQS queue.
func New(ctx context.Context, region string, queueUrl string) (*sqsSink, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &sqsSink{
		client:   sqs.NewFromConfig(cfg),
		queueUrl: queueUrl,
	}, nil
}

func (s *sqsSink) RiskDetected(alert api.RiskAlert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	_, err = s.client.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}
	return nil
}
