package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	Quote    Quote  `yaml:"quote"`
}

type Quote struct {
	Source   string        `yaml:"source"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

func defaults() Config {
	return Config{
		Port:     "8080",
		LogLevel: "info",
		Quote: Quote{
			Source:  "yahoo",
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads the optional YAML file at path, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Quote.Source = getEnv("QUOTE_SOURCE", cfg.Quote.Source)
	cfg.Quote.Endpoint = getEnv("QUOTE_ENDPOINT", cfg.Quote.Endpoint)
	cfg.Quote.Timeout = getEnvDuration("QUOTE_TIMEOUT", cfg.Quote.Timeout)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Quote.Source == "" {
		return fmt.Errorf("quote source cannot be empty")
	}
	if c.Quote.Timeout <= 0 {
		return fmt.Errorf("quote timeout must be greater than 0")
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
