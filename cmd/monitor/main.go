package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	httpadapter "github.com/aerowatch/air-traffic-monitor/internal/adapter/http"
	kafkaadapter "github.com/aerowatch/air-traffic-monitor/internal/adapter/kafka"
	"github.com/aerowatch/air-traffic-monitor/internal/adapter/opensky"
	"github.com/aerowatch/air-traffic-monitor/internal/adapter/openweather"
	"github.com/aerowatch/air-traffic-monitor/internal/config"
	"github.com/aerowatch/air-traffic-monitor/internal/domain"
	"github.com/aerowatch/air-traffic-monitor/internal/observability"
	"github.com/aerowatch/air-traffic-monitor/internal/poller"
	"github.com/aerowatch/air-traffic-monitor/internal/store"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open snapshot store", "error", err)
		os.Exit(1)
	}
	if err := st.SeedAirports(context.Background()); err != nil {
		logger.Error("failed to seed airports", "error", err)
		os.Exit(1)
	}

	feed := opensky.NewClient(cfg.OpenSkyURL, cfg.OpenSkyUsername, cfg.OpenSkyPassword, cfg.FeedTimeout, logger)

	// Weather lookups are feature-flagged via OPENWEATHER_API_KEY.
	var weather domain.WeatherSource
	if cfg.WeatherEnabled() {
		client := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherURL, cfg.WeatherTimeout, metrics, logger)
		weather = openweather.NewCachedSource(client, cfg.WeatherCacheTTL, nil, metrics)
		logger.Info("weather lookups enabled", "cache_ttl", cfg.WeatherCacheTTL, "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("weather lookups disabled")
	}

	// Snapshot fan-out is feature-flagged via KAFKA_BROKERS.
	var publisher poller.SnapshotPublisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		kafkaWriter = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger)
		publisher = kafkaWriter
		logger.Info("snapshot fan-out enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("snapshot fan-out disabled")
	}

	p := poller.New(feed, st, publisher, logger, metrics, poller.Config{
		Bounds:      cfg.Region,
		MinAltitude: cfg.MinAltitude,
		MaxAltitude: cfg.MaxAltitude,
		Interval:    cfg.PollInterval,
		SnapshotCap: cfg.SnapshotCap,
	})

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:        cfg.HTTPAddr,
		Bounds:      cfg.Region,
		MinAltitude: cfg.MinAltitude,
		MaxAltitude: cfg.MaxAltitude,
		Congestion:  cfg.Congestion,
	}, p, st, st, weather, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Snapshot retention is feature-flagged via SNAPSHOT_TTL; zero keeps
	// snapshots forever.
	var scheduler *cron.Cron
	if cfg.SnapshotTTL > 0 {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.RetentionSchedule, func() {
			cutoff := domain.Now().Add(-cfg.SnapshotTTL).Unix()
			pruned, err := st.PruneBefore(ctx, cutoff)
			if err != nil {
				logger.Error("snapshot prune failed", "error", err)
				return
			}
			logger.Info("snapshot prune complete", "pruned", pruned, "cutoff", cutoff)
		})
		if err != nil {
			logger.Error("invalid retention schedule", "schedule", cfg.RetentionSchedule, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		logger.Info("snapshot retention enabled", "ttl", cfg.SnapshotTTL, "schedule", cfg.RetentionSchedule)
	} else {
		logger.Info("snapshot retention disabled")
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start feed poller.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("retention job did not finish before shutdown deadline")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
