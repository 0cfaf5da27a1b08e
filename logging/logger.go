// Package logging provides structured logging for the signup board.
// It builds a log/slog logger from a small YAML-friendly config, with JSON
// and text output for services and a colourised console format for
// interactive use.
//
// Example usage:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	logger.Info("signup accepted", "activity", "Chess Club")
//	logger.Error("failed to fetch activities", "error", err)
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"json", "text", "console"}
)

// Config holds the configuration for the logger.
type Config struct {
	// Level sets the minimum log level. Valid values: debug, info, warn, error
	Level string `yaml:"level"`
	// Format sets the output format. Valid values: json, text, console
	Format string `yaml:"format"`
	// Output sets the output destination: stdout, stderr, or a file path
	Output string `yaml:"output"`
	// AddSource adds source code position to log records
	AddSource bool `yaml:"add_source"`
}

// Logger wraps slog.Logger with a level that can be changed at runtime.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  *os.File
}

// New creates a new logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}
	cfg.setDefaults()

	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	level := &slog.LevelVar{}
	level.Set(lvl)

	file, err := openOutput(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to get output writer: %w", err)
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level:       level,
			AddSource:   cfg.AddSource,
			ReplaceAttr: rfc3339Time,
		})
	case "text":
		handler = slog.NewTextHandler(file, &slog.HandlerOptions{
			Level:       level,
			AddSource:   cfg.AddSource,
			ReplaceAttr: rfc3339Time,
		})
	case "console":
		handler = tint.NewHandler(colorable.NewColorable(file), &tint.Options{
			Level:      level,
			AddSource:  cfg.AddSource,
			TimeFormat: "15:04:05.000",
			NoColor:    !isatty.IsTerminal(file.Fd()),
		})
	}

	return &Logger{
		Logger: slog.New(handler),
		level:  level,
		file:   file,
	}, nil
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	l.level.Set(lvl)
	return nil
}

// Close releases the output file, if the logger writes to one.
func (l *Logger) Close() error {
	if l.file == nil || l.file == os.Stdout || l.file == os.Stderr {
		return nil
	}
	return l.file.Close()
}

func (cfg *Config) validate() error {
	if cfg.Level != "" && !slices.Contains(validLevels, strings.ToLower(cfg.Level)) {
		return fmt.Errorf("level must be one of: %s", strings.Join(validLevels, ", "))
	}
	if cfg.Format != "" && !slices.Contains(validFormats, cfg.Format) {
		return fmt.Errorf("format must be one of: %s", strings.Join(validFormats, ", "))
	}
	return nil
}

func (cfg *Config) setDefaults() {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level: %s", level)
	}
}

func openOutput(output string) (*os.File, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", output, err)
		}
		return file, nil
	}
}

func rfc3339Time(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
	}
	return a
}
