// Package config loads newsletter-service settings from an optional YAML file,
// an optional .env file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Sink names accepted in storage.sink.
const (
	SinkDiscard  = "discard"
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
)

// Config holds all configuration for the service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// ServerConfig controls the listener and http.Server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// StorageConfig selects where accepted subscriptions go.
type StorageConfig struct {
	Sink         string `yaml:"sink"`
	DatabaseURL  string `yaml:"database_url"`
	RedisAddr    string `yaml:"redis_addr"`
	RedisStream  string `yaml:"redis_stream"`
	StreamMaxLen int64  `yaml:"stream_max_len"`
}

// HTTPConfig holds router-level options.
type HTTPConfig struct {
	CORSOrigins  []string `yaml:"cors_origins"`
	RateLimit    float64  `yaml:"rate_limit"` // requests per second on /subscriptions, 0 disables
	RateBurst    int      `yaml:"rate_burst"`
	MaxFormBytes int64    `yaml:"max_form_bytes"` // 0 means the 16 KiB default, negative means no limit
}

// FormLimit is the body limit handed to the router, where 0 disables it.
func (h HTTPConfig) FormLimit() int64 {
	if h.MaxFormBytes < 0 {
		return 0
	}
	return h.MaxFormBytes
}

// Default returns the built-in configuration: loopback listener on an
// ephemeral port and a sink that keeps nothing.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:0",
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Sink:         SinkDiscard,
			RedisStream:  "subscriptions",
			StreamMaxLen: 100000,
		},
		HTTP: HTTPConfig{
			MaxFormBytes: 16 << 10,
		},
	}
}

// Load reads a YAML file on top of Default. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadFromEnv loads the YAML file, then a .env file if one exists, then
// applies environment overrides and validates the result.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("NEWSLETTER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("NEWSLETTER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("NEWSLETTER_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("NEWSLETTER_SINK"); v != "" {
		cfg.Storage.Sink = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v := os.Getenv("NEWSLETTER_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	switch c.Storage.Sink {
	case SinkDiscard:
	case SinkPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("storage.database_url is required for the postgres sink"))
		}
	case SinkRedis:
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redis_addr is required for the redis sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.sink %q", c.Storage.Sink))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	if c.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("http.rate_limit must not be negative"))
	}

	return errors.Join(errs...)
}

// applyDefaults fills fields a YAML file left empty.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Storage.Sink == "" {
		c.Storage.Sink = d.Storage.Sink
	}
	if c.Storage.RedisStream == "" {
		c.Storage.RedisStream = d.Storage.RedisStream
	}
	if c.Storage.StreamMaxLen == 0 {
		c.Storage.StreamMaxLen = d.Storage.StreamMaxLen
	}
	if c.HTTP.MaxFormBytes == 0 {
		c.HTTP.MaxFormBytes = d.HTTP.MaxFormBytes
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = 1
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
