package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled process logger.
// - package-level Debugf/Infof/Warnf/Errorf/Fatalf with Init(level)
// - backed by zap; L() hands the same core to components that take a *zap.Logger

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  = newProduction(level)
	sugar = base.Sugar()
)

func newProduction(lvl zap.AtomicLevel) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stdout), lvl)
	return zap.New(core)
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// SetCore swaps the output core while keeping the level set by Init. It
// returns a function restoring the previous logger; tests use it with
// zaptest/observer.
func SetCore(core zapcore.Core) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prevBase, prevSugar := base, sugar
	base = zap.New(&levelCore{Core: core})
	sugar = base.Sugar()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		base, sugar = prevBase, prevSugar
	}
}

// levelCore applies the package level on top of an arbitrary core.
type levelCore struct{ zapcore.Core }

func (c *levelCore) Enabled(l zapcore.Level) bool { return level.Enabled(l) && c.Core.Enabled(l) }

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields)}
}

func (c *levelCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// L returns the structured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func s() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, v ...interface{}) { s().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { s().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { s().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { s().Errorf(format, v...) }

// Fatalf logs and exits regardless of the configured level.
func Fatalf(format string, v ...interface{}) {
	l := s()
	l.Errorf(format, v...)
	_ = l.Sync()
	os.Exit(1)
}

// Sync flushes buffered entries.
func Sync() error { return L().Sync() }

// LevelString returns the current level as text.
func LevelString() string {
	switch level.Level() {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	case zapcore.FatalLevel:
		return "fatal"
	}
	return "info"
}
