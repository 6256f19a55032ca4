// Package logging wires up the server and client's structured logger,
// following the InitLogger pattern in the x-ipcviewer example's
// cmd/x-ipcviewer/main.go: log/slog with github.com/phsym/console-slog as
// the handler, seeded from a .env file via github.com/joho/godotenv so a
// developer can drop an EGRID_LOG=debug line in .env instead of exporting
// it globally.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
)

// EnvVar is this module's equivalent of the spec's "RUST_LOG or
// equivalent" verbosity control (spec §6).
const EnvVar = "EGRID_LOG"

// LoadEnv reads a .env file in the working directory, if present. Safe to
// call even when no .env exists.
func LoadEnv() {
	_ = godotenv.Load()
}

// Init installs a console-slog handler at the level named by EGRID_LOG
// (error/warn/info/debug/trace — "trace" maps to slog's lowest level,
// one step below Debug, since slog has no built-in Trace) as the default
// logger, and returns it for explicit injection where preferred over
// slog.Default().
func Init() *slog.Logger {
	level := LevelFromEnv()
	logger := slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// LevelFromEnv parses EGRID_LOG into an slog.Level, defaulting to Info.
func LevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv(EnvVar))
}

// ParseLevel maps the spec's named verbosity levels onto slog.Level.
// "trace" has no slog equivalent, so it is represented as one level below
// Debug (-8), matching the convention slog's docs suggest for custom
// finer-than-debug levels.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return slog.LevelDebug - 4
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
