// Package logger configures zerolog for the CLI and MCP server and bridges
// fetch log events into it.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLogLevel overrides the level chosen from flags
const EnvLogLevel = "ADMINREST_LOG_LEVEL"

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string // "pretty" or "json"
	WithCaller bool
	Output     io.Writer
}

// DefaultConfig logs warnings and above as console text on stderr
func DefaultConfig() *Config {
	return &Config{
		Level:  "warn",
		Format: "pretty",
		Output: os.Stderr,
	}
}

// InitLogger builds a logger from config and sets the global level
func InitLogger(config *Config) zerolog.Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(config.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	if config.Format != "json" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(output).With().Timestamp().Str("app", "adminrest")
	if config.WithCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level = strings.ToLower(strings.TrimSpace(level)); level {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}

// levelFor picks the level for the verbosity flags. EnvLogLevel wins when set.
func levelFor(verbose, debug bool) string {
	if env := os.Getenv(EnvLogLevel); env != "" {
		return env
	}
	switch {
	case debug:
		return "debug"
	case verbose:
		return "info"
	default:
		return "warn"
	}
}

// SetupFromFlags configures logger based on command flags. JSON output is
// used when jsonFormat is set, e.g. when stdout is consumed by an MCP client.
func SetupFromFlags(verbose, debug, jsonFormat bool) zerolog.Logger {
	config := DefaultConfig()
	config.Level = levelFor(verbose, debug)
	config.WithCaller = debug
	if jsonFormat {
		config.Format = "json"
	}
	return InitLogger(config)
}

// ForComponent creates a logger with component context
func ForComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// ForRequest creates a logger with request context
func ForRequest(logger zerolog.Logger, method, path string) zerolog.Logger {
	return logger.With().
		Str("method", method).
		Str("path", path).
		Logger()
}

// ForMCP creates a logger with MCP context
func ForMCP(logger zerolog.Logger, tool string) zerolog.Logger {
	return logger.With().
		Str("mcp_tool", tool).
		Str("component", "mcp").
		Logger()
}
