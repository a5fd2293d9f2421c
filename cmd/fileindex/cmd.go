package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fileindex/internal/config"
	"fileindex/internal/index"
	"fileindex/internal/indexer"
	"fileindex/internal/logutil"
	"fileindex/internal/metrics"
	"fileindex/internal/store"
	"fileindex/pkg/models"
)

// Version is set at link time.
var Version = "dev"

const (
	flagConfig      = "config"
	flagIndex       = "index"
	flagLogLevel    = "log-level"
	flagLogFile     = "log-file"
	flagLogFormat   = "log-format"
	flagMetricsFile = "metrics-file"
	flagWorkers     = "workers"
	flagScanRate    = "scan-rate"
	flagSkipDir     = "skip-dir"
)

// NewRootCommand returns the fileindex command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:              "fileindex",
		Short:            "fileindex catalogs files and answers attribute queries against the catalog.",
		TraverseChildren: true,
		SilenceUsage:     true,
	}
	addFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(
		newIndexCommand(),
		newSearchCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

func addFlags(flags *pflag.FlagSet) {
	flags.String(flagConfig, "", "path of a toml config file")
	flags.String(flagIndex, models.DefaultIndexFile, "path of the index file")
	flags.String(flagLogLevel, logutil.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.String(flagLogFile, "", "log file path, logs go to stderr when empty")
	flags.String(flagLogFormat, logutil.DefaultLogFormat, "log format: text, json or console")
	flags.String(flagMetricsFile, "", "write prometheus metrics to this file on exit")
}

func newIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index LOCATION...",
		Short: "Create an index.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIndex,
	}
	cmd.Flags().Int(flagWorkers, runtime.NumCPU(), "files probed concurrently")
	cmd.Flags().Float64(flagScanRate, 0, "files probed per second, 0 for no limit")
	cmd.Flags().StringArray(flagSkipDir, nil, "directory name never descended into, repeatable")
	return cmd
}

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search using an index.",
		Long: `Search using an index.

The arguments are joined with spaces into one query. A query is a list of
field=value terms, all of which must match. A bare "or" among the terms
makes any of them sufficient, and parentheses group terms. Fields are
file_name, file_size and content_type, values are compared exactly.

  fileindex search 'and file_name=sample.pdf (or file_size=100 file_size=200)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}
	// everything after the first query word belongs to the query
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fileindex %s (%s)\n", Version, runtime.Version())
		},
	}
}

// loadConfig layers the config file and the explicitly set flags over the
// defaults, validates the result and initializes logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	if path, _ := flags.GetString(flagConfig); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	var err error
	changed := func(name string) bool {
		return err == nil && flags.Changed(name)
	}
	if changed(flagIndex) {
		cfg.Index, err = flags.GetString(flagIndex)
	}
	if changed(flagLogLevel) {
		cfg.Log.Level, err = flags.GetString(flagLogLevel)
	}
	if changed(flagLogFile) {
		cfg.Log.File, err = flags.GetString(flagLogFile)
	}
	if changed(flagLogFormat) {
		cfg.Log.Format, err = flags.GetString(flagLogFormat)
	}
	if changed(flagMetricsFile) {
		cfg.MetricsFile, err = flags.GetString(flagMetricsFile)
	}
	if changed(flagWorkers) {
		cfg.Workers, err = flags.GetInt(flagWorkers)
	}
	if changed(flagScanRate) {
		cfg.ScanRate, err = flags.GetFloat64(flagScanRate)
	}
	if changed(flagSkipDir) {
		cfg.SkipDirs, err = flags.GetStringArray(flagSkipDir)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logutil.InitLogger(&cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withMetrics runs fn and, when a metrics file is configured, dumps the
// collected metrics afterwards, whether fn failed or not.
func withMetrics(cfg *config.Config, fn func() error) error {
	if cfg.MetricsFile == "" {
		return fn()
	}
	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	err := fn()
	if werr := metrics.WriteToFile(cfg.MetricsFile, registry); werr != nil {
		err = multierr.Append(err, errors.Annotate(werr, "write metrics"))
	}
	return err
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	roots := make([]string, 0, len(args))
	for _, arg := range args {
		root, err := filepath.Abs(arg)
		if err != nil {
			return errors.Trace(err)
		}
		roots = append(roots, root)
	}

	return withMetrics(cfg, func() error {
		idx := index.New()
		if _, err := indexer.NewIndexBuilder(idx, cfg).Build(cmd.Context(), roots...); err != nil {
			return err
		}
		if err := store.SaveFile(cfg.Index, idx.Records()); err != nil {
			return err
		}
		logutil.Info("index saved", zap.String("index", cfg.Index), zap.Int("records", idx.Len()))
		return nil
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	queryString := strings.Join(args, " ")

	return withMetrics(cfg, func() error {
		idx := index.New()
		n, err := store.LoadFile(cfg.Index, idx)
		if err != nil {
			return err
		}
		logutil.Debug("index loaded", zap.String("index", cfg.Index), zap.Int("records", n))

		results, err := idx.Search(queryString)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, location := range results {
			fmt.Fprintln(out, location)
		}
		return nil
	})
}
