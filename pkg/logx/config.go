package logx

import (
	"io"
	"os"
	"strings"
	"time"
)

// Format selects the output format.
type Format string

const (
	// FormatConsole outputs human-readable console logs (default).
	FormatConsole Format = "console"
	// FormatJSON outputs one JSON object per line.
	FormatJSON Format = "json"
)

// Config holds the logger configuration.
type Config struct {
	// Level is the minimum log level to emit.
	Level Level

	// Format is the output format.
	Format Format

	// EnableColors enables ANSI colors (console format only).
	EnableColors bool

	// TimeFormat is the timestamp layout (defaults to RFC3339).
	TimeFormat string

	// Output is where logs are written (defaults to os.Stdout).
	Output io.Writer
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:        LevelInfo,
		Format:       FormatConsole,
		EnableColors: true,
		TimeFormat:   time.RFC3339,
		Output:       os.Stdout,
	}
}

// LoadFromEnv builds a Config from LOG_LEVEL, LOG_FORMAT and LOG_COLOR.
func LoadFromEnv() *Config {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = ParseLevel(level)
	}

	if format := strings.ToLower(os.Getenv("LOG_FORMAT")); format != "" {
		switch format {
		case "json":
			config.Format = FormatJSON
		case "console":
			config.Format = FormatConsole
		}
	}

	if color := os.Getenv("LOG_COLOR"); color != "" {
		config.EnableColors = strings.ToLower(color) == "true" || color == "1"
	}

	return config
}
