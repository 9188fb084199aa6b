// Package config loads launchdash settings from defaults, an optional YAML
// file, LAUNCHDASH_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/launchdash/launchdash/dataset"
)

// EnvPrefix prefixes every environment override, e.g. LAUNCHDASH_SERVER_ADDRESS.
const EnvPrefix = "LAUNCHDASH"

// Config is the complete runtime configuration.
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	Server  ServerConfig  `mapstructure:"server"`
	Chart   ChartConfig   `mapstructure:"chart"`
	Log     LogConfig     `mapstructure:"log"`
}

// DatasetConfig says where the launch records come from.
type DatasetConfig struct {
	Source       string        `mapstructure:"source"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Snapshot     string        `mapstructure:"snapshot"`      // SQLite file; empty disables snapshots
	FromSnapshot bool          `mapstructure:"from_snapshot"` // start from the latest snapshot instead of Source
	Keep         int           `mapstructure:"keep"`          // snapshots kept after each save; 0 keeps all
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Compression     bool          `mapstructure:"compression"`
	PrettyHTML      bool          `mapstructure:"pretty_html"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ChartConfig is the size of rendered chart images in pixels.
type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"source":           "dataset.source",
	"timeout":          "dataset.timeout",
	"snapshot":         "dataset.snapshot",
	"from-snapshot":    "dataset.from_snapshot",
	"keep":             "dataset.keep",
	"addr":             "server.address",
	"compress":         "server.compression",
	"pretty":           "server.pretty_html",
	"shutdown-timeout": "server.shutdown_timeout",
	"width":            "chart.width",
	"height":           "chart.height",
	"log-level":        "log.level",
	"log-format":       "log.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.source", dataset.DefaultSource)
	v.SetDefault("dataset.timeout", 30*time.Second)
	v.SetDefault("dataset.snapshot", "")
	v.SetDefault("dataset.from_snapshot", false)
	v.SetDefault("dataset.keep", 5)
	v.SetDefault("server.address", "127.0.0.1:8050")
	v.SetDefault("server.compression", true)
	v.SetDefault("server.pretty_html", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("chart.width", 640)
	v.SetDefault("chart.height", 480)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration. An explicit path must exist; without one a
// launchdash.yaml is looked up in the working directory and in
// $HOME/.config/launchdash, and its absence is not an error. Only flags
// present in flags and listed in flagKeys are bound.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "binding flag %s", name)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	} else {
		v.SetConfigName("launchdash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "launchdash"))
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "reading config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config to struct")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the program cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Dataset.Source == "" && !c.Dataset.FromSnapshot:
		return errors.New("dataset.source is empty")
	case c.Dataset.FromSnapshot && c.Dataset.Snapshot == "":
		return errors.New("dataset.from_snapshot needs dataset.snapshot")
	case c.Dataset.Keep < 0:
		return errors.Errorf("dataset.keep must not be negative, got %d", c.Dataset.Keep)
	case c.Server.Address == "":
		return errors.New("server.address is empty")
	case c.Chart.Width <= 0 || c.Chart.Height <= 0:
		return errors.Errorf("chart size %dx%d must be positive", c.Chart.Width, c.Chart.Height)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// NewLogger builds the process logger writing to out.
func (c LogConfig) NewLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, errors.Wrap(err, "parsing log level")
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
