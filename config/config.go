// Package config reads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when a variable is unset or invalid.
const (
	DefaultPort            = "3000"
	DefaultAllowedOrigins  = "http://localhost:3000"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultSendBuffer      = 256
)

// Config holds the process settings.
type Config struct {
	Port            string
	AllowedOrigins  []string
	LogLevel        string
	ShutdownTimeout time.Duration
	SendBuffer      int

	// Warnings lists values that were rejected in favour of defaults.
	Warnings []string
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads .env (if present) and then the environment.
func Load(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) Config {
	cfg := Config{
		Port:            DefaultPort,
		AllowedOrigins:  splitOrigins(DefaultAllowedOrigins),
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		SendBuffer:      DefaultSendBuffer,
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 || n > 65535 {
			cfg.warn("PORT=%q is not a valid port, using %s", v, DefaultPort)
		} else {
			cfg.Port = v
		}
	}

	if v, ok := lookup("URLS_AUTHORIZED"); ok {
		if origins := splitOrigins(v); len(origins) > 0 {
			cfg.AllowedOrigins = origins
		} else {
			cfg.warn("URLS_AUTHORIZED is empty, using %s", DefaultAllowedOrigins)
		}
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		switch level := strings.ToLower(v); level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			cfg.warn("LOG_LEVEL=%q is unknown, using %s", v, DefaultLogLevel)
		}
	}

	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok && v != "" {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			cfg.warn("SHUTDOWN_TIMEOUT=%q is not a positive duration, using %s", v, DefaultShutdownTimeout)
		} else {
			cfg.ShutdownTimeout = d
		}
	}

	if v, ok := lookup("WS_SEND_BUFFER"); ok && v != "" {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			cfg.warn("WS_SEND_BUFFER=%q is not a positive integer, using %d", v, DefaultSendBuffer)
		} else {
			cfg.SendBuffer = n
		}
	}

	return cfg
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
