// Package logging provides categorized loggers for stratforge backed by zap.
// Until Initialize is called every logger is a no-op, so library callers
// that never configure logging produce no output.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup and configuration
	CategoryNaming    Category = "naming"    // Identifier derivation
	CategoryDefaults  Category = "defaults"  // Default value resolution
	CategoryFormat    Category = "format"    // Template substitution
	CategoryValidate  Category = "validate"  // Structural validation
	CategoryTemplates Category = "templates" // Template loading and cache
	CategoryAssembler Category = "assembler" // Project assembly state machine
	CategoryWorkspace Category = "workspace" // Writing projects and bundles
	CategoryStore     Category = "store"     // Project registry
	CategoryCLI       Category = "cli"       // Command line surface
)

// Options configures the logging backend.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // json or console
	File       string          // optional log file; stderr when empty
	Categories map[string]bool // per-category toggles; missing means enabled
}

// Logger is a category-scoped logger with printf-style methods.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	baseMu     sync.RWMutex
	base       = zap.NewNop()
	categories map[string]bool

	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
)

// Initialize builds the zap backend from opts and installs it.
func Initialize(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", "console", "text":
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return fmt.Errorf("unknown log format %q", opts.Format)
	}

	sink := zapcore.Lock(os.Stderr)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.AddSync(f)
	}

	core := zapcore.NewCore(encoder, sink, level)
	SetBase(zap.New(core), opts.Categories)

	Get(CategoryBoot).Debug("logging initialized level=%s format=%s file=%q", level, opts.Format, opts.File)
	return nil
}

// SetBase installs l as the backend. Passing nil restores the no-op logger.
// Cached category loggers are discarded.
func SetBase(l *zap.Logger, enabled map[string]bool) {
	if l == nil {
		l = zap.NewNop()
	}
	baseMu.Lock()
	base = l
	categories = enabled
	baseMu.Unlock()

	loggersMu.Lock()
	loggers = make(map[Category]*Logger)
	loggersMu.Unlock()
}

// Zap returns the current backend logger.
func Zap() *zap.Logger {
	baseMu.RLock()
	defer baseMu.RUnlock()
	return base
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Zap().Sync()
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// IsCategoryEnabled returns whether logging is enabled for a category.
func IsCategoryEnabled(category Category) bool {
	baseMu.RLock()
	defer baseMu.RUnlock()
	if categories == nil {
		return true
	}
	enabled, ok := categories[string(category)]
	return !ok || enabled
}

// Get returns the logger for category.
func Get(category Category) *Logger {
	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	backend := zap.NewNop()
	if IsCategoryEnabled(category) {
		backend = Zap().Named(string(category))
	}
	l := &Logger{category: category, sugar: backend.Sugar()}
	loggers[category] = l
	return l
}

// Category returns the logger's category.
func (l *Logger) Category() Category {
	return l.category
}

// With returns a child logger carrying fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.Desugar().With(fields...).Sugar()}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// WithRequestID returns a logger for category that tags every entry with
// the generation request id.
func WithRequestID(category Category, requestID string) *Logger {
	return Get(category).With(zap.String("request_id", requestID))
}

// =============================================================================
// TIMING
// =============================================================================

// Timer measures an operation and logs its duration when stopped.
type Timer struct {
	category  Category
	operation string
	start     time.Time
}

// StartTimer begins timing operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, operation: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).With(zap.Duration("elapsed", elapsed)).Debug("%s completed", t.operation)
	return elapsed
}

// StopWithThreshold logs at warn level when the operation took longer than
// threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	l := Get(t.category).With(zap.Duration("elapsed", elapsed))
	if elapsed > threshold {
		l.Warn("%s slow (threshold %v)", t.operation, threshold)
	} else {
		l.Debug("%s completed", t.operation)
	}
	return elapsed
}
