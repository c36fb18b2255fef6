// Package config handles runtime configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds the settings read at startup. Detection thresholds are not
// configurable; they live as constants in the detection package.
type Config struct {
	LogLevel       slog.Level
	MonitorCommand []string
	MonitorTimeout time.Duration
	FontPath       string // file path, "builtin", or empty for discovery
	AccentColor    string
	ImagePath      string // still image measured instead of a live capture
}

// Defaults.
const (
	DefaultMonitorCommand = "hyprctl monitors -j"
	DefaultMonitorTimeout = 2 * time.Second
	DefaultAccentColor    = "#e74c3c"
)

// Load reads the configuration from the process environment.
func Load() *Config {
	return &Config{
		LogLevel:       getEnvLevel("HYPRRULER_LOG_LEVEL", slog.LevelInfo),
		MonitorCommand: getEnvFields("HYPRRULER_MONITOR_CMD", DefaultMonitorCommand),
		MonitorTimeout: getEnvDuration("HYPRRULER_MONITOR_TIMEOUT", DefaultMonitorTimeout),
		FontPath:       getEnv("HYPRRULER_FONT", ""),
		AccentColor:    getEnv("HYPRRULER_COLOR", DefaultAccentColor),
		ImagePath:      getEnv("HYPRRULER_IMAGE", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getEnvFields(key, def string) []string {
	if f := strings.Fields(os.Getenv(key)); len(f) > 0 {
		return f
	}
	return strings.Fields(def)
}

func getEnvLevel(key string, def slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return def
}
