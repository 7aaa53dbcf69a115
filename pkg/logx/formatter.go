package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Formatter renders a log record into bytes ready to be written.
type Formatter interface {
	Format(rec *Record) ([]byte, error)
}

// Record is a single log event handed to a Formatter.
type Record struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
}

// Fields is a map of structured data attached to a log event.
type Fields map[string]any

// ─── Console ─────────────────────────────────────────────────────────────────

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// ConsoleFormatter renders human-readable single-line logs.
type ConsoleFormatter struct {
	config *Config
}

// NewConsoleFormatter creates a console formatter.
func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

// Format renders the record as "time LEVEL message key=value ...".
func (f *ConsoleFormatter) Format(rec *Record) ([]byte, error) {
	var b strings.Builder

	b.WriteString(rec.Timestamp.Format(f.config.TimeFormat))
	b.WriteByte(' ')

	level := fmt.Sprintf("%-5s", rec.Level.String())
	if f.config.EnableColors {
		b.WriteString(f.levelColor(rec.Level))
		b.WriteString(level)
		b.WriteString(colorReset)
	} else {
		b.WriteString(level)
	}

	b.WriteByte(' ')
	b.WriteString(rec.Message)

	if len(rec.Fields) > 0 {
		keys := make([]string, 0, len(rec.Fields))
		for k := range rec.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteByte(' ')
			if f.config.EnableColors {
				b.WriteString(colorGray)
			}
			fmt.Fprintf(&b, "%s=%v", k, rec.Fields[k])
			if f.config.EnableColors {
				b.WriteString(colorReset)
			}
		}
	}

	if rec.Error != nil {
		fmt.Fprintf(&b, " error=%q", rec.Error.Error())
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f *ConsoleFormatter) levelColor(l Level) string {
	switch l {
	case LevelDebug:
		return colorGray
	case LevelInfo:
		return colorBlue
	case LevelWarn:
		return colorYellow
	default:
		return colorRed
	}
}

// ─── JSON ────────────────────────────────────────────────────────────────────

// JSONFormatter renders one JSON object per line.
type JSONFormatter struct {
	config *Config
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config}
}

// Format renders the record as a single JSON line.
func (f *JSONFormatter) Format(rec *Record) ([]byte, error) {
	data := make(map[string]any, len(rec.Fields)+4)

	data["level"] = rec.Level.String()
	data["message"] = rec.Message
	data["timestamp"] = rec.Timestamp.Format(time.RFC3339Nano)

	for k, v := range rec.Fields {
		data[k] = v
	}

	if rec.Error != nil {
		data["error"] = rec.Error.Error()
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
