// Transcript ingest worker entry point for medscribe.  Consumes transcript
// chunks from Kafka, runs the streaming analysis, and publishes urgent alerts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/donovanp007/medscribe/internal/analysis/stream"
	"github.com/donovanp007/medscribe/internal/application/scribe"
	"github.com/donovanp007/medscribe/internal/config"
	"github.com/donovanp007/medscribe/internal/infrastructure/database/redis"
	"github.com/donovanp007/medscribe/internal/infrastructure/messaging/kafka"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/prometheus"
)

// version is injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	concurrency := flag.Int("concurrency", 0, "number of consumers (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *concurrency > 0 {
		cfg.Worker.Concurrency = *concurrency
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting medscribe worker",
		logging.String("version", version),
		logging.String("topic", cfg.Kafka.TranscriptTopic),
		logging.Int("concurrency", cfg.Worker.Concurrency),
	)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "medscribe",
		Subsystem:            "worker",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		logger.Fatal("metrics collector init failed", logging.Err(err))
	}
	metrics := prometheus.NewAppMetrics(collector)

	opts := []scribe.ServiceOption{
		scribe.WithLogger(logger),
		scribe.WithMetrics(metrics),
		scribe.WithAggregatorOptions(
			stream.WithSimilarityThreshold(cfg.Analysis.SimilarityThreshold),
			stream.WithReevalInterval(cfg.Analysis.ReevalIntervalChars),
		),
	}

	// Snapshots written here are served by the API, so the worker shares the
	// same Redis cache when available.
	redisClient, err := redis.NewClient(&redis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, snapshot cache disabled", logging.Err(err))
	} else {
		defer redisClient.Close()
		cache := redis.NewCache(redisClient, logger, redis.WithPrefix(cfg.Redis.KeyPrefix))
		opts = append(opts, scribe.WithSnapshotCache(
			redis.NewSnapshotStore(cache, cfg.Redis.DefaultTTL, logger)))
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
	}, logger)
	if err != nil {
		logger.Fatal("kafka producer init failed", logging.Err(err))
	}
	defer producer.Close()

	alerts, err := kafka.NewAlertProducer(producer, cfg.Kafka.AlertTopic, logger)
	if err != nil {
		logger.Fatal("alert producer init failed", logging.Err(err))
	}
	opts = append(opts, scribe.WithAlertPublisher(alerts))

	service := scribe.NewService(nil, nil, opts...)

	// With redis available, chunk application is additionally guarded by a
	// per-session distributed lock so replicas never interleave a session.
	var sink kafka.TranscriptSink = service
	if redisClient != nil {
		sink = &lockedSink{service: service, client: redisClient, logger: logger}
	}

	ensureTopics(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumers := make([]*kafka.Consumer, 0, cfg.Worker.Concurrency)
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:         cfg.Kafka.Brokers,
			GroupID:         cfg.Kafka.GroupID,
			Topics:          []string{cfg.Kafka.TranscriptTopic},
			AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
			Retry: kafka.RetryConfig{
				MaxRetries:      cfg.Kafka.MaxRetries,
				RetryBackoff:    cfg.Kafka.RetryBackoff,
				DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
			},
		}, logger)
		if err != nil {
			logger.Fatal("kafka consumer init failed", logging.Err(err))
		}
		consumer.Subscribe(cfg.Kafka.TranscriptTopic, kafka.NewTranscriptHandler(sink, logger))
		if err := consumer.Start(ctx); err != nil {
			logger.Fatal("kafka consumer start failed", logging.Err(err))
		}
		consumers = append(consumers, consumer)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	for _, consumer := range consumers {
		if err := consumer.Close(); err != nil {
			logger.Error("consumer close error", logging.Err(err))
		}
	}
	logger.Info("worker stopped")
}

// ensureTopics creates the transcript, alert, and dead-letter topics when the
// broker allows it.  Failure is not fatal: managed clusters often pre-create
// topics and deny topic administration.
func ensureTopics(cfg *config.Config, logger logging.Logger) {
	manager, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
	if err != nil {
		logger.Warn("topic manager unavailable", logging.Err(err))
		return
	}
	defer manager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := manager.EnsureDefaultTopics(ctx); err != nil {
		logger.Warn("topic creation failed", logging.Err(err))
	}
}

// loadConfig loads the file when a path is given, otherwise falls back to
// environment variables over defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

// newLogger maps the application log config onto the logging package.
func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	format := "json"
	if cfg.Format == "text" {
		format = "console"
	}
	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      format,
		OutputPaths: []string{output},
	})
}
