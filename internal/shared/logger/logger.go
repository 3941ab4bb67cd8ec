// Package logger wires log/slog with a tint console handler or a JSON handler
// and exposes a small Interface that application code depends on.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/config"
)

var (
	base        *slog.Logger
	baseMu      sync.RWMutex
	atomicLevel = new(slog.LevelVar)
)

// Init builds the process-wide logger from configuration.
func Init(cfg *config.LoggerConfig) error {
	atomicLevel.Set(parseLevel(cfg.Level))

	var writer io.Writer
	switch strings.ToLower(cfg.OutputPath) {
	case "stdout", "":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		file, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		writer = file
	}

	// Source locations are noisy at info level; only attach them while debugging.
	addSource := atomicLevel.Level() == slog.LevelDebug

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level:     atomicLevel,
			AddSource: addSource,
		})
	} else {
		handler = newTintHandler(writer, addSource)
	}

	l := slog.New(handler)
	baseMu.Lock()
	base = l
	baseMu.Unlock()
	slog.SetDefault(l)

	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func newTintHandler(w io.Writer, addSource bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      atomicLevel,
		TimeFormat: time.DateTime,
		AddSource:  addSource,
		NoColor:    !isTerminal(w),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	})
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SetLevel changes the level of the process-wide logger at runtime.
func SetLevel(level slog.Level) {
	atomicLevel.Set(level)
}

// Get returns the process-wide slog logger, creating a console logger if Init was never called.
func Get() *slog.Logger {
	baseMu.RLock()
	l := base
	baseMu.RUnlock()
	if l != nil {
		return l
	}

	baseMu.Lock()
	defer baseMu.Unlock()
	if base == nil {
		base = slog.New(newTintHandler(os.Stdout, false))
	}
	return base
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// WithComponent returns a logger tagged with the given component name.
func WithComponent(component string) Interface {
	return NewLoggerWithSlog(Get().With("component", component))
}
