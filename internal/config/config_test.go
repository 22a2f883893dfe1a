package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "./data/geonames.sqlite3", cfg.GeonamesDBPath)
	assert.Equal(t, "./data/zips.sqlite3", cfg.ZipsDBPath)
	assert.Equal(t, 1000, cfg.LookupCacheSize)
	assert.Empty(t, cfg.GeoIPDBPath)
	assert.True(t, cfg.TZShapeEnabled)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 720*time.Hour, cfg.NearestCityTTL)
	assert.Equal(t, 8760*time.Hour, cfg.CookieMaxAge)
	assert.False(t, cfg.PipelineEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "calendar-requests", cfg.KafkaSourceTopic)
	assert.Equal(t, "calendar-exports", cfg.KafkaSinkTopic)
	assert.Equal(t, "hebcal-calendar", cfg.KafkaGroupID)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("GEONAMES_DB_PATH", "/srv/geonames.sqlite3")
	t.Setenv("ZIPS_DB_PATH", "/srv/zips.sqlite3")
	t.Setenv("LOOKUP_CACHE_SIZE", "500")
	t.Setenv("GEOIP_DB_PATH", "/srv/GeoLite2-City.mmdb")
	t.Setenv("TZSHAPE_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("NEAREST_CITY_TTL", "1h")
	t.Setenv("COOKIE_MAX_AGE", "24h")
	t.Setenv("PIPELINE_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/srv/geonames.sqlite3", cfg.GeonamesDBPath)
	assert.Equal(t, "/srv/zips.sqlite3", cfg.ZipsDBPath)
	assert.Equal(t, 500, cfg.LookupCacheSize)
	assert.Equal(t, "/srv/GeoLite2-City.mmdb", cfg.GeoIPDBPath)
	assert.False(t, cfg.TZShapeEnabled)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, time.Hour, cfg.NearestCityTTL)
	assert.Equal(t, 24*time.Hour, cfg.CookieMaxAge)
	assert.True(t, cfg.PipelineEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"BATCH_SIZE", "0"},
		{"BATCH_SIZE", "9999"},
		{"BATCH_FLUSH_INTERVAL", "not-a-duration"},
		{"LOOKUP_CACHE_SIZE", "-5"},
		{"NEAREST_CITY_TTL", "forever"},
		{"COOKIE_MAX_AGE", "0s"},
		{"TZSHAPE_ENABLED", "sometimes"},
		{"PIPELINE_ENABLED", "yes please"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:7070\nLOG_LEVEL=warn\n"), 0o600))
	t.Setenv("LOG_LEVEL", "error")
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("HTTP_ADDR") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "error", cfg.LogLevel, "the environment wins over .env")
}
