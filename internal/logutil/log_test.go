package logutil

import (
	"path/filepath"
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLoggerToFile(t *testing.T) {
	defer SetLogger(zap.NewNop())

	file := filepath.Join(t.TempDir(), "fileindex.log")
	require.NoError(t, InitLogger(&Config{Level: "debug", File: file, Format: "json"}))
	require.True(t, BgLogger().Core().Enabled(zapcore.DebugLevel))
	Info("hello")
	require.FileExists(t, file)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(&Config{Level: "loud", Format: DefaultLogFormat})
	require.Error(t, err)
}

func TestHelpersUseGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	Debug("d")
	Info("i", zap.String("k", "v"))
	Warn("w")
	Error("e", ShortError(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 4)
	require.Equal(t, "v", entries[1].ContextMap()["k"])
	require.Equal(t, "boom", entries[3].ContextMap()["error"])
}
