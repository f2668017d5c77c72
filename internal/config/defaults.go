// Package config provides configuration loading, defaults, and validation for
// the medscribe engine.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 5 * time.Minute
	DefaultRedisKeyPrefix = "medscribe"

	DefaultKafkaBroker          = "localhost:9092"
	DefaultKafkaGroupID         = "medscribe-ingest"
	DefaultKafkaTranscriptTopic = "medscribe.transcript.chunks"
	DefaultKafkaAlertTopic      = "medscribe.alerts.urgent"
	DefaultKafkaDeadLetterTopic = "medscribe.transcript.deadletter"

	DefaultMinSentenceLength   = 10
	DefaultConfidenceFloor     = 0.3
	DefaultSimilarityThreshold = 0.8
	DefaultReevalIntervalChars = 100
	DefaultSuggestionFloor     = 0.2

	DefaultAssistTimeout = 5 * time.Second

	DefaultWorkerConcurrency = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.TranscriptTopic == "" {
		cfg.Kafka.TranscriptTopic = DefaultKafkaTranscriptTopic
	}
	if cfg.Kafka.AlertTopic == "" {
		cfg.Kafka.AlertTopic = DefaultKafkaAlertTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultKafkaDeadLetterTopic
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = time.Second
	}

	// Analysis
	if cfg.Analysis.MinSentenceLength == 0 {
		cfg.Analysis.MinSentenceLength = DefaultMinSentenceLength
	}
	if cfg.Analysis.ConfidenceFloor == 0 {
		cfg.Analysis.ConfidenceFloor = DefaultConfidenceFloor
	}
	if cfg.Analysis.SimilarityThreshold == 0 {
		cfg.Analysis.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.Analysis.ReevalIntervalChars == 0 {
		cfg.Analysis.ReevalIntervalChars = DefaultReevalIntervalChars
	}
	if cfg.Analysis.SuggestionFloor == 0 {
		cfg.Analysis.SuggestionFloor = DefaultSuggestionFloor
	}

	// Assist
	if cfg.Assist.Timeout == 0 {
		cfg.Assist.Timeout = DefaultAssistTimeout
	}

	// Worker
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = time.Second
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
