package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvFormat selects the handler: json or text.
	EnvFormat = "LOG_FORMAT"
	// EnvLevel is the minimum level written.
	EnvLevel = "LOG_LEVEL"
	// EnvSource adds the caller's file and line when set to 1.
	EnvSource = "LOG_SOURCE"

	appName       = "nova-console"
	defaultFormat = "json"
	defaultLevel  = "info"
)

type Config struct {
	Format    string
	Level     slog.Level
	AddSource bool
}

// BootstrapOptions controls logger initialization. A non-empty Level
// overrides LOG_LEVEL.
type BootstrapOptions struct {
	Command string
	Writer  io.Writer
	Level   string
}

func DefaultConfig() Config {
	return Config{
		Format: defaultFormat,
		Level:  slog.LevelInfo,
	}
}

// ParseConfig validates raw format and level values; empty values take the
// defaults.
func ParseConfig(format, level string) (Config, error) {
	f, err := parseFormat(format)
	if err != nil {
		return Config{}, err
	}
	l, err := parseLevel(level)
	if err != nil {
		return Config{}, err
	}
	return Config{Format: f, Level: l}, nil
}

func LoadConfigFromEnv() (Config, error) {
	cfg, err := ParseConfig(os.Getenv(EnvFormat), os.Getenv(EnvLevel))
	if err != nil {
		return Config{}, err
	}
	cfg.AddSource = strings.TrimSpace(os.Getenv(EnvSource)) == "1"
	return cfg, nil
}

// NewLogger builds a logger that tags every record with the app and the
// running command.
func NewLogger(cfg Config, writer io.Writer, command string) *slog.Logger {
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	command = strings.TrimSpace(command)
	if command == "" {
		command = appName
	}
	return slog.New(handler).With("app", appName, "command", command)
}

// Component returns logger tagged with a component name, falling back to the
// default logger.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}

// BootstrapFromEnv installs the configured logger as the slog default.
func BootstrapFromEnv(opts BootstrapOptions) (*slog.Logger, error) {
	cfg, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Level) != "" {
		level, err := parseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		cfg.Level = level
	}
	logger := NewLogger(cfg, opts.Writer, opts.Command)
	slog.SetDefault(logger)
	return logger, nil
}

func parseFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		return defaultFormat, nil
	}
	switch format {
	case "json", "text":
		return format, nil
	default:
		return "", fmt.Errorf("%s must be one of: json, text", EnvFormat)
	}
}

func parseLevel(raw string) (slog.Level, error) {
	level := strings.ToLower(strings.TrimSpace(raw))
	if level == "" {
		level = defaultLevel
	}
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%s must be one of: debug, info, warn, error", EnvLevel)
	}
}
