// Package config loads psiverify settings. Values come from defaults, then
// an optional YAML file, then PSIVERIFY_* environment variables. Command
// line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid reports a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid config")

// Config is the full configuration.
type Config struct {
	DB       string `yaml:"db"`
	LogLevel string `yaml:"log_level"`
	Workers  int    `yaml:"workers"`
	FailFast bool   `yaml:"fail_fast"`
	Seed     int64  `yaml:"seed"`

	Server Server `yaml:"server"`
	Redis  Redis  `yaml:"redis"`
}

// Server configures the HTTP API.
type Server struct {
	Port        int      `yaml:"port"`
	AdminKey    string   `yaml:"admin_key"` // empty disables POST /runs
	CORSOrigins []string `yaml:"cors_origins"`

	// On-demand chapter runs allowed per client and window.
	RunLimit  int           `yaml:"run_limit"`
	RunWindow time.Duration `yaml:"run_window"`
}

// Redis configures the latest-report cache. An empty Addr disables it.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB:       "psiverify.db",
		LogLevel: "info",
		Server: Server{
			Port:      8080,
			RunLimit:  30,
			RunWindow: time.Hour,
		},
		Redis: Redis{TTL: 24 * time.Hour},
	}
}

// Load reads the YAML file at path, when path is non-empty, over the
// defaults and applies environment overrides read through getenv.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w: %v", path, ErrInvalid, err)
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PSIVERIFY_DB"); v != "" {
		c.DB = v
	}
	if v := getenv("PSIVERIFY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("PSIVERIFY_ADMIN_KEY"); v != "" {
		c.Server.AdminKey = v
	}
	if v := getenv("PSIVERIFY_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("PSIVERIFY_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, origin)
			}
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PSIVERIFY_PORT", &c.Server.Port},
		{"PSIVERIFY_WORKERS", &c.Workers},
	}
	for _, e := range ints {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", e.key, v, ErrInvalid)
		}
		*e.dst = n
	}
	if v := getenv("PSIVERIFY_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PSIVERIFY_SEED=%q: %w", v, ErrInvalid)
		}
		c.Seed = n
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: %w", c.LogLevel, ErrInvalid))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d: %w", c.Workers, ErrInvalid))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d: %w", c.Server.Port, ErrInvalid))
	}
	if c.Server.RunLimit < 1 {
		errs = append(errs, fmt.Errorf("server.run_limit %d: %w", c.Server.RunLimit, ErrInvalid))
	}
	if c.Server.RunWindow <= 0 {
		errs = append(errs, fmt.Errorf("server.run_window %s: %w", c.Server.RunWindow, ErrInvalid))
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, fmt.Errorf("redis.ttl %s: %w", c.Redis.TTL, ErrInvalid))
	}
	return errors.Join(errs...)
}

// CacheEnabled reports whether a Redis address is configured.
func (c Config) CacheEnabled() bool { return c.Redis.Addr != "" }
