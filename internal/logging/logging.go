// Package logging configures the structured logger used across scriptgraph.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// LevelVerbose sits between debug and info: per-file progress that is
// useful when diagnosing a run but too noisy by default.
const LevelVerbose = slog.Level(-2)

// Severity is the four-valued level vocabulary used in scriptgraph output.
type Severity string

const (
	Info    Severity = "INFO"
	Verbose Severity = "VERBOSE"
	Warning Severity = "WARNING"
	Error   Severity = "ERROR"
)

// Level maps a severity to its slog level. Unknown severities log as info.
func (s Severity) Level() slog.Level {
	switch Severity(strings.ToUpper(string(s))) {
	case Verbose:
		return LevelVerbose
	case Warning:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w. When verbose is false, VERBOSE
// records are dropped.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = LevelVerbose
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Log writes msg at the given severity.
func Log(logger *slog.Logger, msg string, sev Severity, args ...any) {
	logger.Log(context.Background(), sev.Level(), msg, args...)
}

// LogVerbose is shorthand for Log(logger, msg, Verbose, args...).
func LogVerbose(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelVerbose, msg, args...)
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch level {
	case LevelVerbose:
		a.Value = slog.StringValue(string(Verbose))
	case slog.LevelWarn:
		a.Value = slog.StringValue(string(Warning))
	}
	return a
}
