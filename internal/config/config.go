package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Location data.
	GeonamesDBPath  string
	ZipsDBPath      string
	LookupCacheSize int
	GeoIPDBPath     string // empty disables the client IP fallback
	TZShapeEnabled  bool

	// Shared nearest-city memo; empty RedisAddr keeps it in process.
	RedisAddr      string
	NearestCityTTL time.Duration

	CookieMaxAge time.Duration

	// Request stream pipeline.
	PipelineEnabled    bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. Variables from a .env file in the working directory are used
// when not already set in the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	lookupCacheSize, err := parsePositiveInt("LOOKUP_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	nearestCityTTL, err := parseDuration("NEAREST_CITY_TTL", "720h")
	if err != nil {
		return nil, err
	}

	cookieMaxAge, err := parseDuration("COOKIE_MAX_AGE", "8760h")
	if err != nil {
		return nil, err
	}

	tzShape, err := parseBool("TZSHAPE_ENABLED", true)
	if err != nil {
		return nil, err
	}

	pipelineEnabled, err := parseBool("PIPELINE_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GeonamesDBPath:  sharedcfg.EnvOrDefault("GEONAMES_DB_PATH", "./data/geonames.sqlite3"),
		ZipsDBPath:      sharedcfg.EnvOrDefault("ZIPS_DB_PATH", "./data/zips.sqlite3"),
		LookupCacheSize: lookupCacheSize,
		GeoIPDBPath:     os.Getenv("GEOIP_DB_PATH"),
		TZShapeEnabled:  tzShape,

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		NearestCityTTL: nearestCityTTL,

		CookieMaxAge: cookieMaxAge,

		PipelineEnabled:    pipelineEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "calendar-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "calendar-exports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "hebcal-calendar"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.GeonamesDBPath == "" {
		return nil, errors.New("GEONAMES_DB_PATH is required")
	}
	if cfg.ZipsDBPath == "" {
		return nil, errors.New("ZIPS_DB_PATH is required")
	}
	if cfg.PipelineEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, s)
	}
	return b, nil
}
