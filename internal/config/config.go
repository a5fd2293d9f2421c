package config

import (
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"

	ferrors "fileindex/internal/errors"
	"fileindex/internal/logutil"
	"fileindex/pkg/models"
)

// Config is the configuration of the index and search commands.
type Config struct {
	// Index is the path of the CSV index file.
	Index string `toml:"index" json:"index"`
	// Workers bounds how many files are probed concurrently while indexing.
	Workers int `toml:"workers" json:"workers"`
	// ScanRate limits file probes per second, 0 means unlimited.
	ScanRate float64 `toml:"scan-rate" json:"scan-rate"`
	// SkipDirs are directory names that are never descended into.
	SkipDirs []string `toml:"skip-dirs" json:"skip-dirs"`
	// MetricsFile receives a prometheus text dump on exit when set.
	MetricsFile string `toml:"metrics-file" json:"metrics-file"`

	Log logutil.Config `toml:"log" json:"log"`
}

// NewConfig returns the default config.
func NewConfig() *Config {
	return &Config{
		Index:   models.DefaultIndexFile,
		Workers: runtime.NumCPU(),
		Log: logutil.Config{
			Level:  logutil.DefaultLogLevel,
			Format: logutil.DefaultLogFormat,
		},
	}
}

// LoadFromFile overlays the toml file at path on top of cfg.
func (cfg *Config) LoadFromFile(path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Annotatef(err, "load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return ferrors.ErrInvalidConfig.GenWithStackByArgs("unknown keys " + strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks the config values.
func (cfg *Config) Validate() error {
	if cfg.Index == "" {
		return ferrors.ErrInvalidConfig.GenWithStackByArgs("index path is empty")
	}
	if cfg.Workers < 1 {
		return ferrors.ErrInvalidConfig.GenWithStackByArgs("workers must be at least 1")
	}
	if cfg.ScanRate < 0 {
		return ferrors.ErrInvalidConfig.GenWithStackByArgs("scan-rate must not be negative")
	}
	switch cfg.Log.Format {
	case "text", "json", "console":
	default:
		return ferrors.ErrInvalidConfig.GenWithStackByArgs("unknown log format " + cfg.Log.Format)
	}
	return nil
}
