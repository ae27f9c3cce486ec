package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitAndLevelString(t *testing.T) {
	defer Init("info")

	Init("debug")
	require.Equal(t, "debug", LevelString())
	Init("WARN")
	require.Equal(t, "warn", LevelString())
	Init("Error")
	require.Equal(t, "error", LevelString())
	Init("nonsense")
	require.Equal(t, "info", LevelString(), "unknown input falls back to info")
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := SetCore(core)
	defer restore()
	defer Init("info")

	Init("warn")
	Debugf("debug-msg")
	Infof("info-msg")
	Warnf("warn-msg")
	Errorf("error-%s", "msg")

	require.Equal(t, 0, logs.FilterMessage("debug-msg").Len())
	require.Equal(t, 0, logs.FilterMessage("info-msg").Len())
	require.Equal(t, 1, logs.FilterMessage("warn-msg").Len())
	require.Equal(t, 1, logs.FilterMessage("error-msg").Len())

	Init("info")
	Infof("hello %s", "world")
	entries := logs.FilterMessage("hello world").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
}

func TestStructuredLoggerSharesLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := SetCore(core)
	defer restore()
	defer Init("info")

	Init("error")
	L().Info("hidden")
	L().Error("shown")
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "shown", logs.All()[0].Message)
}
