package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/couchcryptid/hebcal-calendar-service/internal/adapter/geodb"
	"github.com/couchcryptid/hebcal-calendar-service/internal/adapter/geoip"
	"github.com/couchcryptid/hebcal-calendar-service/internal/adapter/hebcal"
	httpadapter "github.com/couchcryptid/hebcal-calendar-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hebcal-calendar-service/internal/adapter/kafka"
	redisadapter "github.com/couchcryptid/hebcal-calendar-service/internal/adapter/redis"
	"github.com/couchcryptid/hebcal-calendar-service/internal/adapter/tzshape"
	"github.com/couchcryptid/hebcal-calendar-service/internal/config"
	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
	"github.com/couchcryptid/hebcal-calendar-service/internal/observability"
	"github.com/couchcryptid/hebcal-calendar-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	geonames, err := geodb.Open(cfg.GeonamesDBPath, logger)
	if err != nil {
		logger.Error("failed to open geonames database", "error", err)
		os.Exit(1)
	}
	zips, err := geodb.Open(cfg.ZipsDBPath, logger)
	if err != nil {
		logger.Error("failed to open zips database", "error", err)
		os.Exit(1)
	}
	store, err := geodb.NewStore(geonames, zips, logger)
	if err != nil {
		logger.Error("failed to load legacy city table", "error", err)
		os.Exit(1)
	}
	lookup := geodb.NewCachedLookup(store, cfg.LookupCacheSize, metrics)

	// Optional resolver collaborators, each feature-flagged by config.
	var opts []domain.ResolverOption
	var geoReader *geoip.Reader
	if cfg.GeoIPDBPath != "" {
		geoReader, err = geoip.Open(cfg.GeoIPDBPath, logger)
		if err != nil {
			logger.Error("failed to open geoip database", "error", err)
			os.Exit(1)
		}
		opts = append(opts, domain.WithGeoIP(geoReader, store))
	} else {
		logger.Info("geoip fallback disabled")
	}
	if cfg.TZShapeEnabled {
		finder, err := tzshape.New()
		if err != nil {
			logger.Error("failed to load timezone shapes", "error", err)
			os.Exit(1)
		}
		opts = append(opts, domain.WithTimezoneFinder(finder))
		logger.Info("timezone shape lookup enabled")
	}
	var memo domain.NearestCityCache = domain.NewMemoryCityCache()
	var redisMemo *redisadapter.CityMemo
	if cfg.RedisAddr != "" {
		redisMemo = redisadapter.NewCityMemo(redisadapter.NewClient(cfg.RedisAddr), cfg.NearestCityTTL, logger)
		if err := redisMemo.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, nearest-city memo will miss until it recovers", "addr", cfg.RedisAddr, "error", err)
		}
		memo = redisMemo
		logger.Info("shared nearest-city memo enabled", "addr", cfg.RedisAddr, "ttl", cfg.NearestCityTTL)
	}
	opts = append(opts, domain.WithNearestCityCache(observability.NewCountingCityCache(memo, metrics)))

	resolver := domain.NewResolver(lookup, logger, opts...)
	decoder := domain.NewDecoder(resolver, logger)
	materializer := domain.NewMaterializer(hebcal.NewEngine(metrics, logger), logger)
	transformer := pipeline.NewTransformer(decoder, materializer, metrics, logger)

	var (
		p      *pipeline.Pipeline
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.PipelineEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p = pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
	}

	calendar := httpadapter.NewCalendarHandler(transformer, metrics, cfg.CookieMaxAge, logger)
	today := httpadapter.NewTodayHandler(resolver, hebcal.Sun{}, metrics, logger)
	// Readiness follows the location databases only; an idle request topic
	// must not take the HTTP endpoint out of rotation.
	srv := httpadapter.NewServer(cfg.HTTPAddr, store, calendar, today, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start request-stream pipeline.
	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if geoReader != nil {
		if err := geoReader.Close(); err != nil {
			logger.Error("geoip close error", "error", err)
		}
	}
	if redisMemo != nil {
		if err := redisMemo.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	for _, db := range []interface{ Close() error }{geonames, zips} {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
