package logger

import (
	"path/filepath"
	"testing"

	"edconnect_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		mode, level string
		want        zap.AtomicLevel
	}{
		{"debug", "", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"release", "", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"release", "warn", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"debug", "not-a-level", zap.NewAtomicLevelAt(zap.DebugLevel)},
	}
	for _, tc := range cases {
		cfg := &config.Config{Server: config.ServerConfig{Mode: tc.mode}, Log: config.LogConfig{Level: tc.level}}
		assert.Equal(t, tc.want.Level(), levelFor(cfg), "%s/%s", tc.mode, tc.level)
	}
}

func TestInitLoggerCreatesLogDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Log:    config.LogConfig{File: filepath.Join(dir, "nested", "app.log"), MaxSizeMB: 1},
	}
	InitLogger(cfg)
	t.Cleanup(func() { Log = zap.NewNop() })

	assert.True(t, Log.Core().Enabled(zap.InfoLevel))
	assert.False(t, Log.Core().Enabled(zap.DebugLevel))
	assert.DirExists(t, filepath.Join(dir, "nested"))
}
