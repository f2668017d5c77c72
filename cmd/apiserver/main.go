// API server entry point for medscribe.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/donovanp007/medscribe/internal/analysis/stream"
	"github.com/donovanp007/medscribe/internal/application/scribe"
	"github.com/donovanp007/medscribe/internal/config"
	"github.com/donovanp007/medscribe/internal/infrastructure/database/redis"
	"github.com/donovanp007/medscribe/internal/infrastructure/messaging/kafka"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/prometheus"
	"github.com/donovanp007/medscribe/internal/intelligence/assist"
	httpserver "github.com/donovanp007/medscribe/internal/interfaces/http"
	"github.com/donovanp007/medscribe/internal/interfaces/http/handlers"
)

// version is injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting medscribe api server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "medscribe",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		logger.Fatal("metrics collector init failed", logging.Err(err))
	}
	metrics := prometheus.NewAppMetrics(collector)

	var (
		opts     []scribe.ServiceOption
		checkers []handlers.HealthChecker
	)
	opts = append(opts,
		scribe.WithLogger(logger),
		scribe.WithMetrics(metrics),
		scribe.WithAggregatorOptions(
			stream.WithSimilarityThreshold(cfg.Analysis.SimilarityThreshold),
			stream.WithReevalInterval(cfg.Analysis.ReevalIntervalChars),
		),
	)

	// Redis snapshot cache is optional: without it snapshots are served from
	// session state only.
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
		checkers = append(checkers, redisChecker(redisClient))
	}

	if cfg.Assist.Enabled {
		assistClient, err := assist.NewClient(cfg.Assist.BaseURL,
			assist.WithAPIKey(cfg.Assist.APIKey),
			assist.WithTimeout(cfg.Assist.Timeout),
			assist.WithLogger(logger),
		)
		if err != nil {
			logger.Fatal("assist client init failed", logging.Err(err))
		}
		opts = append(opts, scribe.WithClassifier(assistClient))
	}

	// Urgent alerts go out on Kafka when brokers are configured.
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
		}, logger)
		if err != nil {
			logger.Warn("kafka unavailable, urgent alerts disabled", logging.Err(err))
		} else {
			defer producer.Close()
			alerts, err := kafka.NewAlertProducer(producer, cfg.Kafka.AlertTopic, logger)
			if err != nil {
				logger.Fatal("alert producer init failed", logging.Err(err))
			}
			opts = append(opts, scribe.WithAlertPublisher(alerts))
		}
	}

	service := scribe.NewService(nil, nil, opts...)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Service:   service,
		Logger:    logger,
		Metrics:   metrics,
		Collector: collector,
		Mode:      cfg.Server.Mode,
		Checkers:  checkers,
		Version:   version,
	})

	server := httpserver.NewServer(cfg.Server.Port, router, logger, cfg.Server.ShutdownTimeout)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server failed", logging.Err(err))
	}

	if err := server.Stop(context.Background()); err != nil {
		logger.Error("shutdown error", logging.Err(err))
	}
	logger.Info("api server stopped")
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
