// Package logging provides per-module structured loggers over log/slog.
// Records fan out to stdout, the systemd journal when available, and a
// ring buffer that feeds the SSE log stream. Module levels can be tuned
// independently through Config.Modules.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const defaultBufferSize = 1000

// Logger is a duck-typed interface satisfied by *slog.Logger. Packages
// accept this interface instead of the concrete type.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

var (
	mu            sync.RWMutex
	cfg           Config
	initialized   bool
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevels  = make(map[string]*slog.LevelVar)
	buffer        *RingBuffer
	callback      LogCallback
)

// Initialize sets up the logging system. Loggers handed out before
// Initialize are rebuilt so they pick up the configured handler chain.
func Initialize(c Config) {
	mu.Lock()
	defer mu.Unlock()

	cfg = c
	initialized = true
	buffer = NewRingBuffer(defaultBufferSize)

	for module, lv := range moduleLevels {
		lv.Set(moduleLevel(module))
		moduleLoggers[module] = slog.New(newHandler(cfg.Format, lv)).With("module", module)
	}

	root := &slog.LevelVar{}
	root.Set(moduleLevel(""))
	slog.SetDefault(slog.New(newHandler(cfg.Format, root)))
}

// GetLogger returns the logger for a module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mu.RLock()
	if l, ok := moduleLoggers[module]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := moduleLoggers[module]; ok {
		return l
	}

	lv := &slog.LevelVar{}
	lv.Set(moduleLevel(module))
	l := slog.New(newHandler(cfg.Format, lv)).With("module", module)
	moduleLoggers[module] = l
	moduleLevels[module] = lv
	return l
}

// GetBuffer returns the ring buffer holding recent log entries.
func GetBuffer() *RingBuffer {
	mu.RLock()
	defer mu.RUnlock()
	return buffer
}

// SetLogCallback registers a callback invoked for each new log entry,
// used to publish log events without an import cycle.
func SetLogCallback(cb LogCallback) {
	mu.Lock()
	defer mu.Unlock()
	callback = cb
}

// moduleLevel resolves the effective level for a module from the loaded
// config. Callers hold mu.
func moduleLevel(module string) slog.Level {
	level := slog.LevelInfo
	if !initialized {
		return level
	}
	if l, ok := parseLevel(cfg.Level); ok {
		level = l
	}
	if s, ok := cfg.Modules[module]; ok {
		if l, ok := parseLevel(s); ok {
			level = l
		}
	}
	return level
}

// newHandler builds the fan-out handler chain: stdout, journal when the
// process runs under systemd, and the ring buffer. Callers hold mu.
func newHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var stdout slog.Handler
	if format == "json" {
		stdout = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		stdout = slog.NewTextHandler(os.Stdout, opts)
	}

	handlers := []slog.Handler{stdout}
	if journalAvailable() {
		handlers = append(handlers, NewJournalHandler(level))
	}
	handlers = append(handlers, NewBufferHandler(level))

	if len(handlers) == 1 {
		return handlers[0]
	}
	return NewMultiHandler(handlers...)
}

// parseLevel converts a string level to slog.Level.
func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
