package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
environment: test
server:
  port: 9090
pipeline:
  symbols: [BTCUSDT, ETHUSDT]
  interval: 4h
  workers: 2
engine:
  atr_period: 21
  merge_k:
    macro: 0.45
binance:
  base_url: https://api.binance.com
redis:
  host: localhost
  port: 6379
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.Pipeline.Symbols)
	assert.Equal(t, 4*time.Hour, cfg.Pipeline.Interval)
	assert.Equal(t, 21, cfg.Engine.ATRPeriod)
	assert.Equal(t, 0.45, cfg.Engine.MergeK.Macro)
	assert.Equal(t, "localhost", cfg.Redis.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsEmptySymbols(t *testing.T) {
	yaml := `
environment: test
pipeline:
  symbols: []
redis:
  host: localhost
`
	_, err := Load(writeConfig(t, yaml))
	assert.ErrorContains(t, err, "symbols")
}

func TestValidateRequiresKafkaBrokersWhenEnabled(t *testing.T) {
	yaml := `
environment: test
pipeline:
  symbols: [BTCUSDT]
kafka:
  enabled: true
redis:
  host: localhost
`
	_, err := Load(writeConfig(t, yaml))
	assert.ErrorContains(t, err, "kafka.brokers")
}

func TestValidateRequiresRedisHost(t *testing.T) {
	yaml := `
environment: test
pipeline:
  symbols: [BTCUSDT]
`
	_, err := Load(writeConfig(t, yaml))
	assert.ErrorContains(t, err, "redis.host")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "SOLUSDT,XRPUSDT")
	t.Setenv("REDIS_HOST", "redis.internal")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"SOLUSDT", "XRPUSDT"}, cfg.Pipeline.Symbols)
	assert.Equal(t, "redis.internal", cfg.Redis.Host)
}
