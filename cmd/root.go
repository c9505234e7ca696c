package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/skilltree/internal/cache"
	"github.com/abhisek/skilltree/internal/config"
	"github.com/abhisek/skilltree/internal/logging"
	"github.com/abhisek/skilltree/internal/progress"
	"github.com/abhisek/skilltree/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "skilltree",
	Short:        "Skill-tree course server",
	Long:         "Skilltree serves courses built as prerequisite graphs of skills and tells every learner what to study next.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .skilltree.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SKILLTREE_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".skilltree")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("SKILLTREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// env bundles what most commands need: configuration, a logger and an
// open store.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	// closers are released before the store, newest first.
	closers []io.Closer
}

func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	if err := e.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// openEnv loads configuration and opens the store.
func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("opened store", "path", dbPath)
	return &env{cfg: cfg, logger: logger, store: st}, nil
}

// resolveDBPath returns the database path using --db flag or config file
// (highest priority), then SKILLTREE_DB env var, then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// newSequenceCache builds the configured cache. A nil cache disables
// caching.
func newSequenceCache(cfg config.Config) progress.SequenceCache {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			cache.WithPrefix(cfg.Redis.Prefix),
			cache.WithTTL(cfg.Cache.TTL),
		)
	case config.CacheMemory:
		return cache.NewMemory()
	default:
		return nil
	}
}

func (e *env) tracker() *progress.Tracker {
	opts := []progress.Option{progress.WithLogger(e.logger)}
	if c := newSequenceCache(e.cfg); c != nil {
		if closer, ok := c.(io.Closer); ok {
			e.closers = append(e.closers, closer)
		}
		opts = append(opts, progress.WithCache(c))
	}
	return progress.NewTracker(e.store.Trees(), e.store.Progress(), opts...)
}
