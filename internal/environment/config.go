package environment

import (
	"os"

	"github.com/joho/godotenv"
)

type EnvConfig struct {
	LogDir      string
	ConfigPath  string
	NatsUrl     string
	NatsSubject string
	SqsQueueUrl string
	AwsRegion   string
}

func ReadEnvConfig() *EnvConfig {
	// .env is optional; process env wins either way
	_ = godotenv.Load()

	return &EnvConfig{
		LogDir:      envOr("ANALYZER_LOG_DIR", "logs"),
		ConfigPath:  envOr("ANALYZER_CONFIG", "analyzer.toml"),
		NatsUrl:     envOr("NATS_URL", "nats://localhost:4222"),
		NatsSubject: envOr("ANALYZER_ALERT_SUBJECT", "analyzer.alerts"),
		SqsQueueUrl: os.Getenv("ANALYZER_ALERT_QUEUE_URL"),
		AwsRegion:   envOr("AWS_REGION", "eu-central-1"),
	}
}

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
