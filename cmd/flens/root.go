package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	internal "github.com/ZanzyTHEbar/file-lens/flens"
	"github.com/ZanzyTHEbar/file-lens/flens/aggregate"
	"github.com/ZanzyTHEbar/file-lens/flens/config"
	"github.com/ZanzyTHEbar/file-lens/flens/index"
	"github.com/ZanzyTHEbar/file-lens/flens/service"
	"github.com/ZanzyTHEbar/file-lens/flens/tabular"
)

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	root       string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           internal.DefaultAppName,
		Short:         "Index a directory tree and query its tabular files",
		Long:          `Walk a root directory, aggregate file statistics by directory and date, and filter the rows of CSV, TSV and Parquet files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default searches ., .., /etc/flens, ~/.config/flens)")
	flags.StringVar(&a.root, "root", "", "root directory to index (overrides rootDir and WORK_DIR)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newStatsCmd(a),
		newColumnsCmd(a),
		newValuesCmd(a),
		newFilterCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

func (a *app) load() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.root != "" {
		cfg.RootDir = a.root
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.logger = internal.NewLogger(cfg.Log.Level, cfg.Log.Console)
	return nil
}

func (a *app) registry() *tabular.Registry {
	if !a.cfg.Cache.Enabled {
		return tabular.DefaultRegistry()
	}
	cache := tabular.NewRowCache(a.cfg.CacheTTL(), uint64(a.cfg.Cache.Capacity))
	return tabular.DefaultRegistry(tabular.WithRowCache(cache))
}

func (a *app) newStore(extra ...service.Option) (*service.Store, error) {
	root, err := a.cfg.AbsRoot()
	if err != nil {
		return nil, err
	}
	policy, err := a.cfg.Policy()
	if err != nil {
		return nil, err
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(a.logger),
		service.WithIndexOptions(
			index.WithOnError(policy),
			index.WithWorkers(a.cfg.Index.Workers),
			index.WithLogger(a.logger),
		),
		service.WithEngineOptions(
			aggregate.WithLocation(loc),
			aggregate.WithLiveNavigation(a.cfg.Navigation.Live),
			aggregate.WithWorkers(a.cfg.Index.Workers),
			aggregate.WithLogger(a.logger),
		),
	}
	if a.cfg.Index.IgnoreFile != "" {
		opts = append(opts, service.WithIndexOptions(index.WithIgnoreFile(a.cfg.Index.IgnoreFile)))
	}
	return service.NewStore(root, a.registry(), append(opts, extra...)...), nil
}

func (a *app) openStore(ctx context.Context) (*service.Store, error) {
	s, err := a.newStore()
	if err != nil {
		return nil, err
	}
	if _, err := s.Reindex(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// openFile binds a format reader to path without walking the root.
func (a *app) openFile(path string) (tabular.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return a.registry().Open(abs)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
