// Package config defines all configuration structures for the medscribe
// engine.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig holds Redis connection parameters for the snapshot cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer/consumer parameters for the transcript
// ingest topic and the urgent-alert topic.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	TranscriptTopic string        `mapstructure:"transcript_topic"`
	AlertTopic      string        `mapstructure:"alert_topic"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
	AutoOffsetReset string        `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	BatchSize       int           `mapstructure:"batch_size"`
}

// AnalysisConfig holds the tunables of the classification and extraction
// engine.  The similarity threshold and confidence floor are hand-tuned
// constants preserved as configuration rather than re-derived.
type AnalysisConfig struct {
	// MinSentenceLength is the minimum fragment length, in characters, that
	// the segmenter will emit.  Shorter fragments are discarded as noise.
	MinSentenceLength int `mapstructure:"min_sentence_length"`

	// ConfidenceFloor is the minimum assignment confidence required before a
	// sentence mutates any section state.
	ConfidenceFloor float64 `mapstructure:"confidence_floor"`

	// SimilarityThreshold is the word-overlap similarity above which a new
	// fragment is considered a near-duplicate and silently dropped.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`

	// ReevalIntervalChars controls how many newly accumulated characters
	// trigger a re-evaluation of urgency and suggested actions.
	ReevalIntervalChars int `mapstructure:"reeval_interval_chars"`

	// SuggestionFloor is the minimum template-suggestion score that will be
	// surfaced to callers.
	SuggestionFloor float64 `mapstructure:"suggestion_floor"`
}

// AssistConfig holds parameters of the optional external AI classification
// service.  When disabled the engine relies solely on local keyword scoring.
type AssistConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WorkerConfig holds transcript-ingest worker execution parameters.
type WorkerConfig struct {
	Concurrency       int           `mapstructure:"concurrency"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the engine.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Assist   AssistConfig   `mapstructure:"assist"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}
	if c.Kafka.TranscriptTopic == "" {
		return fmt.Errorf("config: kafka.transcript_topic is required")
	}

	// Analysis
	if c.Analysis.MinSentenceLength < 1 {
		return fmt.Errorf("config: analysis.min_sentence_length must be >= 1, got %d", c.Analysis.MinSentenceLength)
	}
	if c.Analysis.ConfidenceFloor < 0 || c.Analysis.ConfidenceFloor > 1 {
		return fmt.Errorf("config: analysis.confidence_floor %.2f is out of range [0, 1]", c.Analysis.ConfidenceFloor)
	}
	if c.Analysis.SimilarityThreshold < 0 || c.Analysis.SimilarityThreshold > 1 {
		return fmt.Errorf("config: analysis.similarity_threshold %.2f is out of range [0, 1]", c.Analysis.SimilarityThreshold)
	}
	if c.Analysis.ReevalIntervalChars < 1 {
		return fmt.Errorf("config: analysis.reeval_interval_chars must be >= 1, got %d", c.Analysis.ReevalIntervalChars)
	}
	if c.Analysis.SuggestionFloor < 0 || c.Analysis.SuggestionFloor > 1 {
		return fmt.Errorf("config: analysis.suggestion_floor %.2f is out of range [0, 1]", c.Analysis.SuggestionFloor)
	}

	// Assist
	if c.Assist.Enabled && c.Assist.BaseURL == "" {
		return fmt.Errorf("config: assist.base_url is required when assist is enabled")
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}
