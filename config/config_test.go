package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdash/launchdash/dataset"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launchdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, dataset.DefaultSource, cfg.Dataset.Source)
	assert.Equal(t, 30*time.Second, cfg.Dataset.Timeout)
	assert.False(t, cfg.Dataset.FromSnapshot)
	assert.Equal(t, 5, cfg.Dataset.Keep)
	assert.Equal(t, "127.0.0.1:8050", cfg.Server.Address)
	assert.True(t, cfg.Server.Compression)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, ChartConfig{Width: 640, Height: 480}, cfg.Chart)
	assert.Equal(t, LogConfig{Level: "info", Format: "text"}, cfg.Log)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, `
dataset:
  source: testdata/launches.csv
  timeout: 5s
server:
  address: 0.0.0.0:9000
  pretty_html: true
chart:
  width: 800
log:
  level: debug
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "testdata/launches.csv", cfg.Dataset.Source)
		assert.Equal(t, 5*time.Second, cfg.Dataset.Timeout)
		assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address)
		assert.True(t, cfg.Server.PrettyHTML)
		assert.Equal(t, 800, cfg.Chart.Width)
		assert.Equal(t, 480, cfg.Chart.Height)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("LAUNCHDASH_SERVER_ADDRESS", ":7000")
		t.Setenv("LAUNCHDASH_DATASET_TIMEOUT", "1m")
		t.Setenv("LAUNCHDASH_LOG_FORMAT", "json")

		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, ":7000", cfg.Server.Address)
		assert.Equal(t, time.Minute, cfg.Dataset.Timeout)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("LAUNCHDASH_SERVER_ADDRESS", ":7000")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("addr", "", "")
		flags.Int("width", 0, "")
		flags.String("log-level", "", "")
		require.NoError(t, flags.Parse([]string{"--addr", ":6000", "--width", "1024"}))

		cfg, err := Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, ":6000", cfg.Server.Address)
		assert.Equal(t, 1024, cfg.Chart.Width)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"bad size", "chart:\n  width: 0\n", "chart size"},
		{"snapshot without file", "dataset:\n  from_snapshot: true\n", "dataset.snapshot"},
		{"empty source", "dataset:\n  source: \"\"\n", "dataset.source"},
		{"negative keep", "dataset:\n  keep: -1\n", "dataset.keep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.yaml), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.WithField("site", "KSC LC-39A").Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"site":"KSC LC-39A"`)

	_, err = LogConfig{Level: "nope"}.NewLogger(&buf)
	assert.Error(t, err)
}
