package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Data source kinds.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config holds all service settings, populated from environment variables
// and an optional .env file. Process environment wins over the file.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset location.
	DataSource       string
	CoordinatesFile  string
	ObservationsFile string
	DataEncoding     string
	SQLitePath       string

	// Dashboard defaults.
	DefaultAreas []string

	// Mapbox configuration.
	MapboxEnabled   bool
	MapboxToken     string
	MapboxTokenFile string
	MapboxVerify    bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxStyle     string

	// Interaction log; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment, applying defaults where
// unset. When Mapbox is enabled and MAPBOX_TOKEN is unset, the token is read
// from MAPBOX_TOKEN_FILE; a missing or empty token file is an error.
func Load() (*Config, error) {
	envFile := ".env"
	if v, ok := os.LookupEnv("ENV_FILE"); ok {
		envFile = v
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	mapboxCacheSize, err := parsePositiveInt("MAPBOX_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	mapboxEnabled, err := parseBool("MAPBOX_ENABLED", true)
	if err != nil {
		return nil, err
	}
	mapboxVerify, err := parseBool("MAPBOX_VERIFY", true)
	if err != nil {
		return nil, err
	}

	dataDir := sharedcfg.EnvOrDefault("DATA_DIR", "data")

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8050"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataSource:       strings.ToLower(sharedcfg.EnvOrDefault("DATA_SOURCE", SourceCSV)),
		CoordinatesFile:  sharedcfg.EnvOrDefault("COORDINATES_FILE", filepath.Join(dataDir, "adr.csv")),
		ObservationsFile: sharedcfg.EnvOrDefault("OBSERVATIONS_FILE", filepath.Join(dataDir, "tokyo.csv")),
		DataEncoding:     strings.ToLower(sharedcfg.EnvOrDefault("DATA_ENCODING", "utf-8")),
		SQLitePath:       sharedcfg.EnvOrDefault("SQLITE_PATH", filepath.Join(dataDir, "tokyo.db")),

		// ParseBrokers is the shared comma-list splitter; blanks are dropped.
		DefaultAreas: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("DEFAULT_AREAS", "千代田区,新宿区,台東区")),

		MapboxEnabled:   mapboxEnabled,
		MapboxToken:     strings.TrimSpace(sharedcfg.EnvOrDefault("MAPBOX_TOKEN", "")),
		MapboxTokenFile: sharedcfg.EnvOrDefault("MAPBOX_TOKEN_FILE", ".mapbox_token"),
		MapboxVerify:    mapboxVerify,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
		MapboxStyle:     sharedcfg.EnvOrDefault("MAPBOX_STYLE", "dark"),

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "dashboard-interactions"),
	}

	switch cfg.DataSource {
	case SourceCSV, SourceSQLite:
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: want csv or sqlite", cfg.DataSource)
	}
	switch cfg.DataEncoding {
	case "utf-8", "shift_jis":
	default:
		return nil, fmt.Errorf("invalid DATA_ENCODING %q: want utf-8 or shift_jis", cfg.DataEncoding)
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		token, err := ReadToken(cfg.MapboxTokenFile)
		if err != nil {
			return nil, err
		}
		cfg.MapboxToken = token
	}

	return cfg, nil
}

// InteractionLogEnabled reports whether interactions are published to Kafka.
func (c *Config) InteractionLogEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ReadToken reads a single access token from path, trimming whitespace.
func ReadToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read MAPBOX_TOKEN_FILE: %w", err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", fmt.Errorf("MAPBOX_TOKEN_FILE %s is empty", path)
	}
	return token, nil
}
