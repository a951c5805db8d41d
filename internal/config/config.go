package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/forecast-report-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// FixMaxTemperature renders per-day maximums correctly instead of
	// reproducing the legacy display defect.
	FixMaxTemperature bool

	// AccuWeather forecast fetching.
	AccuWeatherAPIKey    string
	AccuWeatherEnabled   bool
	AccuWeatherBaseURL   string
	AccuWeatherTimeout   time.Duration
	AccuWeatherCacheSize int

	// ArchivePath is the SQLite file reports are archived to. Empty disables archiving.
	ArchivePath string
}

const maxBatchSize = 1000

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	accuTimeout, err := parsePositiveDuration("ACCUWEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	fixMax, err := FixMaxTemperature()
	if err != nil {
		return nil, err
	}

	accuKey := os.Getenv("ACCUWEATHER_API_KEY")
	accuEnabled, err := parseBool("ACCUWEATHER_ENABLED", accuKey != "")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-forecasts"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "forecast-reports"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "forecast-report"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		FixMaxTemperature:  fixMax,

		AccuWeatherAPIKey:    accuKey,
		AccuWeatherEnabled:   accuEnabled,
		AccuWeatherBaseURL:   envOrDefault("ACCUWEATHER_BASE_URL", "https://dataservice.accuweather.com"),
		AccuWeatherTimeout:   accuTimeout,
		AccuWeatherCacheSize: parseCacheSize(),

		ArchivePath: os.Getenv("ARCHIVE_PATH"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.AccuWeatherEnabled && cfg.AccuWeatherAPIKey == "" {
		return nil, errors.New("ACCUWEATHER_ENABLED is true but ACCUWEATHER_API_KEY is not set")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text)", cfg.LogFormat)
	}

	return cfg, nil
}

// ReportMode maps FixMaxTemperature to the renderer's display mode.
func (c *Config) ReportMode() domain.MaxTemperatureMode {
	if c.FixMaxTemperature {
		return domain.MaxTemperatureCorrected
	}
	return domain.MaxTemperatureLegacy
}

// FixMaxTemperature reads REPORT_FIX_MAX_TEMPERATURE on its own, for callers
// that only render reports and need none of the service settings.
func FixMaxTemperature() (bool, error) {
	return parseBool("REPORT_FIX_MAX_TEMPERATURE", false)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	n, err := strconv.Atoi(envOrDefault("BATCH_SIZE", "50"))
	if err != nil || n < 1 || n > maxBatchSize {
		return 0, fmt.Errorf("invalid BATCH_SIZE: must be between 1 and %d", maxBatchSize)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseCacheSize() int {
	if s := os.Getenv("ACCUWEATHER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 100
}
