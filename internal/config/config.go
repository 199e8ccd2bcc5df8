package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DBPath is the SQLite database file holding snapshots and airports.
	DBPath string

	// Region restriction and default query-parameter values.
	Region      domain.RegionBounds
	MinAltitude float64
	MaxAltitude float64

	// Feed polling.
	PollInterval time.Duration
	FeedTimeout  time.Duration

	// SnapshotCap bounds how many entries one poll cycle may append,
	// keeping write volume under control against the unbounded feed.
	SnapshotCap int

	// SnapshotTTL is how long stored snapshots are retained; 0 keeps them
	// forever. RetentionSchedule is a cron expression for the prune job.
	SnapshotTTL       time.Duration
	RetentionSchedule string

	Congestion domain.CongestionThresholds

	// OpenSky feed credentials (optional; anonymous access works with
	// tighter rate limits).
	OpenSkyURL      string
	OpenSkyUsername string
	OpenSkyPassword string

	// OpenWeather configuration. Weather queries are unconfigured when the
	// API key is empty.
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	WeatherTimeout    time.Duration
	WeatherCacheTTL   time.Duration

	// Kafka snapshot fan-out; disabled when no brokers are configured.
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// WeatherEnabled reports whether an external weather provider is configured.
func (c *Config) WeatherEnabled() bool { return c.OpenWeatherAPIKey != "" }

// KafkaEnabled reports whether snapshot fan-out is configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	pollInterval, err := envDuration("POLL_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	feedTimeout, err := envDuration("FEED_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := envDuration("WEATHER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	weatherCacheTTL, err := envDuration("WEATHER_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, err
	}
	snapshotTTL, err := envDurationAllowZero("SNAPSHOT_TTL", 0)
	if err != nil {
		return nil, err
	}

	region, err := loadRegion()
	if err != nil {
		return nil, err
	}

	minAlt, err := envFloat("MIN_ALTITUDE", 0)
	if err != nil {
		return nil, err
	}
	maxAlt, err := envFloat("MAX_ALTITUDE", 50000)
	if err != nil {
		return nil, err
	}

	snapshotCap, err := envInt("SNAPSHOT_CAP", 100)
	if err != nil {
		return nil, err
	}

	medium, err := envInt("CONGESTION_MEDIUM", 50)
	if err != nil {
		return nil, err
	}
	high, err := envInt("CONGESTION_HIGH", 150)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DBPath: envOrDefault("DB_PATH", "airtraffic.db"),

		Region:      region,
		MinAltitude: minAlt,
		MaxAltitude: maxAlt,

		PollInterval: pollInterval,
		FeedTimeout:  feedTimeout,
		SnapshotCap:  snapshotCap,

		SnapshotTTL:       snapshotTTL,
		RetentionSchedule: envOrDefault("RETENTION_SCHEDULE", "@hourly"),

		Congestion: domain.CongestionThresholds{Medium: medium, High: high},

		OpenSkyURL:      envOrDefault("OPENSKY_URL", "https://opensky-network.org/api"),
		OpenSkyUsername: os.Getenv("OPENSKY_USERNAME"),
		OpenSkyPassword: os.Getenv("OPENSKY_PASSWORD"),

		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherURL:    envOrDefault("OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5/weather"),
		WeatherTimeout:    weatherTimeout,
		WeatherCacheTTL:   weatherCacheTTL,

		KafkaBrokers:   parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "flight-snapshots"),
	}

	if cfg.DBPath == "" {
		return nil, errors.New("DB_PATH is required")
	}
	if cfg.SnapshotCap <= 0 {
		return nil, errors.New("SNAPSHOT_CAP must be positive")
	}
	if cfg.MinAltitude > cfg.MaxAltitude {
		return nil, errors.New("MIN_ALTITUDE must not exceed MAX_ALTITUDE")
	}
	if cfg.Congestion.Medium <= 0 || cfg.Congestion.High <= cfg.Congestion.Medium {
		return nil, errors.New("congestion thresholds must satisfy 0 < CONGESTION_MEDIUM < CONGESTION_HIGH")
	}
	if cfg.KafkaEnabled() && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

// loadRegion reads the region bounding box, defaulting to the Indian
// subcontinent region the original deployment watches.
func loadRegion() (domain.RegionBounds, error) {
	minLat, err := envFloat("REGION_MIN_LAT", 5.0)
	if err != nil {
		return domain.RegionBounds{}, err
	}
	maxLat, err := envFloat("REGION_MAX_LAT", 35.0)
	if err != nil {
		return domain.RegionBounds{}, err
	}
	minLon, err := envFloat("REGION_MIN_LON", 68.0)
	if err != nil {
		return domain.RegionBounds{}, err
	}
	maxLon, err := envFloat("REGION_MAX_LON", 97.0)
	if err != nil {
		return domain.RegionBounds{}, err
	}

	bounds := domain.RegionBounds{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}
	if bounds.MinLat > bounds.MaxLat || bounds.MinLon > bounds.MaxLon {
		return domain.RegionBounds{}, errors.New("region bounds are inverted")
	}
	if bounds.MinLat < -90 || bounds.MaxLat > 90 || bounds.MinLon < -180 || bounds.MaxLon > 180 {
		return domain.RegionBounds{}, errors.New("region bounds outside valid coordinate range")
	}
	return bounds, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envDurationAllowZero(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
