package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/programme-lv/analyzer/internal/alert"
	"github.com/programme-lv/analyzer/internal/alert/natssink"
	"github.com/programme-lv/analyzer/internal/alert/sqssink"
	"github.com/programme-lv/analyzer/internal/alert/termsink"
	"github.com/programme-lv/analyzer/internal/analyzer"
	"github.com/programme-lv/analyzer/internal/classify"
	"github.com/programme-lv/analyzer/internal/config"
	"github.com/programme-lv/analyzer/internal/environment"
	"github.com/programme-lv/analyzer/internal/fcache"
	"github.com/programme-lv/analyzer/internal/logstore"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	env := environment.ReadEnvConfig()

	app := &cli.Command{
		Name:  "analyzer",
		Usage: "aggregate sandbox telemetry and classify run risk",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-dir",
				Value: env.LogDir,
				Usage: "directory the sandbox runner writes telemetry documents to",
			},
			&cli.StringFlag{
				Name:  "config",
				Value: env.ConfigPath,
				Usage: "optional TOML config with rule thresholds",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "print aggregate statistics as JSON",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, _, err := buildAnalyzer(cmd, logger)
					if err != nil {
						return err
					}
					return printJson(a.Stats())
				},
			},
			{
				Name:  "runs",
				Usage: "print enriched per-run rows as JSON, most recent first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 50, Usage: "max rows, 0 for all"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, _, err := buildAnalyzer(cmd, logger)
					if err != nil {
						return err
					}
					return printJson(a.Runs(int(cmd.Int("limit"))))
				},
			},
			{
				Name:  "model",
				Usage: "print classifier info as JSON",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, _, err := buildAnalyzer(cmd, logger)
					if err != nil {
						return err
					}
					return printJson(a.ModelInfo())
				},
			},
			{
				Name:  "watch",
				Usage: "poll for new runs and publish risk alerts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "sink",
						Value: "term",
						Usage: "alert destination: term, nats or sqs",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "poll interval, overrides config",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					a, cfg, err := buildAnalyzer(cmd, logger)
					if err != nil {
						return err
					}

					sink, err := buildSink(ctx, cmd.String("sink"), env)
					if err != nil {
						return err
					}

					interval := time.Duration(cfg.PollIntervalMs) * time.Millisecond
					if cmd.Duration("interval") > 0 {
						interval = cmd.Duration("interval")
					}

					logger.Info("watching for new runs",
						"dir", cmd.String("log-dir"), "interval", interval)
					return a.Watch(ctx, interval, sink)
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error("analyzer failed", "error", err)
		os.Exit(1)
	}
}

func buildAnalyzer(cmd *cli.Command, logger *slog.Logger) (*analyzer.Analyzer, config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, cfg, err
	}

	store := logstore.New(cmd.String("log-dir"), logger)
	classifier := classify.New(cfg.Rules)
	cache := fcache.New(store, classifier, logger)

	return analyzer.New(cache, classifier, logger), cfg, nil
}

func buildSink(ctx context.Context, kind string, env *environment.EnvConfig) (alert.Sink, error) {
	switch kind {
	case "term":
		return termsink.New(), nil
	case "nats":
		nc, err := nats.Connect(env.NatsUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS at %s: %w", env.NatsUrl, err)
		}
		return natssink.New(nc, env.NatsSubject), nil
	case "sqs":
		if env.SqsQueueUrl == "" {
			return nil, fmt.Errorf("ANALYZER_ALERT_QUEUE_URL is not set")
		}
		return sqssink.New(ctx, env.AwsRegion, env.SqsQueueUrl)
	default:
		return nil, fmt.Errorf("unknown sink %q", kind)
	}
}

func printJson(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
