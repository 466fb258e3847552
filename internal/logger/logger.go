// Package logger provides the structured slog setup shared by all
// components: one line per event, fixed key ordering, KV output for
// development and JSON for production, with request correlation carried
// through context.
package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Options configure the global logger.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // kv, json; empty follows Profile
	Profile string // debug/dev prefers kv, anything else json
	Dir     string // optional log directory
	File    string // optional log file name inside Dir
}

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	shutdowned bool

	logWriter *asyncWriter
	logCloser io.Closer
	levelVar  slog.LevelVar

	// L is the base logger; prefer the context-aware helpers below.
	L *slog.Logger
)

// Init configures the global structured logger. It may be called once;
// repeated calls are no-ops.
func Init(opts Options) error {
	var initErr error
	initOnce.Do(func() {
		levelVar.Set(parseLevel(opts.Level))

		writers := []io.Writer{os.Stdout}
		if opts.Dir != "" && opts.File != "" {
			if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
				log.Printf("logger: create log dir %s: %v", opts.Dir, err)
			} else {
				path := filepath.Join(opts.Dir, opts.File)
				f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					log.Printf("logger: open log file %s: %v", path, err)
				} else {
					writers = append(writers, f)
					logCloser = f
				}
			}
		}
		logWriter = newAsyncWriter(writers, 64*1024)

		handler := newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   selectFormat(opts),
			keyOrder: append([]string(nil), defaultKeyOrder...),
		})
		L = slog.New(handler)
		slog.SetDefault(L)
	})
	return initErr
}

// Shutdown flushes buffered output and closes any opened log file.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdowned {
		return nil
	}
	shutdowned = true

	var errs []error
	if logWriter != nil {
		if err := logWriter.Flush(); err != nil {
			errs = append(errs, err)
		}
		if err := logWriter.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if logCloser != nil {
		if err := logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Component returns a logger scoped to the given component attribute.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs an event for a component at the given level, preferring a
// context-carried logger when no component logger can be built.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	logg := Component(component)
	if logg == nil {
		logg = FromContext(ctx)
		if logg == nil {
			return
		}
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func selectFormat(opts Options) logFormat {
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	if strings.EqualFold(opts.Profile, "debug") || strings.EqualFold(opts.Profile, "dev") {
		return formatKV
	}
	return formatJSON
}

// defaultKeyOrder fixes the position of well-known keys in every log line;
// unknown keys follow alphabetically.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"outcome",
	"duration_ms",
	"title",
	"query",
	"tmdb_id",
	"candidates",
	"choice",
	"sessions",
	"messages",
	"mode",
	"host",
	"port",
	"db",
	"err",
	"err_code",
	"cause",
	"attempts",
}
