package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Landmarks LandmarksConfig `mapstructure:"landmarks"`
	Zones     ZonesConfig     `mapstructure:"zones"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	Enabled   bool   `mapstructure:"enabled"`
}

// RoutingConfig points at an OSRM-compatible walking router.
type RoutingConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Profile   string `mapstructure:"profile"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   int    `mapstructure:"timeout"`
	CacheTTL  int    `mapstructure:"cache_ttl"`
}

// LandmarksConfig selects the landmark provider. Provider is "latlong",
// "overpass" or "none".
type LandmarksConfig struct {
	Provider         string `mapstructure:"provider"`
	LatLongURL       string `mapstructure:"latlong_url"`
	APIKey           string `mapstructure:"api_key"`
	OverpassEndpoint string `mapstructure:"overpass_endpoint"`
	RadiusMeters     int    `mapstructure:"radius"`
	Timeout          int    `mapstructure:"timeout"`
	CacheTTL         int    `mapstructure:"cache_ttl"`
}

// ZonesConfig selects where risk zones are read from: "file" or "postgres".
type ZonesConfig struct {
	Source string `mapstructure:"source"`
	File   string `mapstructure:"file"`
}

type ScoringConfig struct {
	LookupConcurrency    int `mapstructure:"lookup_concurrency"`
	CandidateConcurrency int `mapstructure:"candidate_concurrency"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from .env, file and environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load(".env") // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "safepath")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "safepath")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "safepath-analysis")
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("routing.base_url", "http://router.project-osrm.org")
	v.SetDefault("routing.profile", "walking")
	v.SetDefault("routing.user_agent", "SafePath/1.0")
	v.SetDefault("routing.timeout", 10)
	v.SetDefault("routing.cache_ttl", 300)
	v.SetDefault("landmarks.provider", "latlong")
	v.SetDefault("landmarks.latlong_url", "https://apihub.latlong.ai/v4/landmark.json")
	v.SetDefault("landmarks.api_key", "")
	v.SetDefault("landmarks.overpass_endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("landmarks.radius", 150)
	v.SetDefault("landmarks.timeout", 5)
	v.SetDefault("landmarks.cache_ttl", 3600)
	v.SetDefault("zones.source", "file")
	v.SetDefault("zones.file", "delhi_data.json")
	v.SetDefault("scoring.lookup_concurrency", 4)
	v.SetDefault("scoring.candidate_concurrency", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SAFEPATH_DATABASE_HOST → database.host
	v.SetEnvPrefix("SAFEPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("landmarks.api_key", "SAFEPATH_LANDMARKS_API_KEY", "LATLONG_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Routing.BaseURL == "" {
		errs = append(errs, "routing.base_url is required")
	}
	if c.Routing.Timeout <= 0 {
		errs = append(errs, "routing.timeout must be positive")
	}
	switch c.Landmarks.Provider {
	case "latlong", "overpass", "none":
	default:
		errs = append(errs, fmt.Sprintf("landmarks.provider must be latlong, overpass or none, got %q", c.Landmarks.Provider))
	}
	if c.Landmarks.Timeout <= 0 {
		errs = append(errs, "landmarks.timeout must be positive")
	}
	switch c.Zones.Source {
	case "file":
		if c.Zones.File == "" {
			errs = append(errs, "zones.file is required when zones.source is file")
		}
	case "postgres":
	default:
		errs = append(errs, fmt.Sprintf("zones.source must be file or postgres, got %q", c.Zones.Source))
	}
	if c.Scoring.LookupConcurrency <= 0 {
		errs = append(errs, "scoring.lookup_concurrency must be positive")
	}
	if c.Scoring.CandidateConcurrency <= 0 {
		errs = append(errs, "scoring.candidate_concurrency must be positive")
	}
	if c.Temporal.Enabled && c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required when temporal is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
