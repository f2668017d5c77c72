package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 9191
  mode: release
redis:
  addr: cache.internal:6379
kafka:
  brokers:
    - broker-a:9092
  group_id: scribe-test
  transcript_topic: transcripts.test
analysis:
  confidence_floor: 0.4
log:
  level: warn
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"broker-a:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "scribe-test", cfg.Kafka.GroupID)
	assert.Equal(t, "transcripts.test", cfg.Kafka.TranscriptTopic)
	assert.InDelta(t, 0.4, cfg.Analysis.ConfidenceFloor, 1e-9)
	assert.Equal(t, "warn", cfg.Log.Level)

	// Unset fields receive defaults.
	assert.Equal(t, DefaultMinSentenceLength, cfg.Analysis.MinSentenceLength)
	assert.Equal(t, DefaultKafkaAlertTopic, cfg.Kafka.AlertTopic)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 99999
`)
	cfg, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_MalformedYAMLReturnsError(t *testing.T) {
	path := writeTempConfig(t, "server: [unclosed")
	cfg, err := Load(path)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadFromEnv_DefaultsProduceValidConfig(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}

func TestMustLoad_ReturnsConfig(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 8181
`)
	cfg := MustLoad(path)
	require.NotNil(t, cfg)
	assert.Equal(t, 8181, cfg.Server.Port)
}
