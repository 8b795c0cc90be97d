// Package cli is the command line shell around the tracker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"prism-tracker/api"
	"prism-tracker/config"
	"prism-tracker/storage"
	"prism-tracker/tracker"
)

// app carries what every subcommand needs once PersistentPreRunE has run.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	rdb     *redis.Client
	closers []func() error
	tracker *tracker.Tracker
	deduper api.Deduper
}

// NewRootCommand builds the prism-tracker command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	var backend, dataDir string

	root := &cobra.Command{
		Use:          "prism-tracker",
		Short:        "Track tasks, notes and goals",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsTracker(cmd) {
				return nil
			}
			cfg, err := config.LoadWithOverrides(map[string]string{
				"TRACKER_STORAGE":  backend,
				"TRACKER_DATA_DIR": dataDir,
			})
			if err != nil {
				return err
			}
			a.cfg = cfg
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&backend, "storage", "", "storage backend: file, sqlite, redis or memory (default $TRACKER_STORAGE or file)")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory used by the file backend (default $TRACKER_DATA_DIR)")

	root.AddCommand(
		newServeCommand(a),
		newTaskCommand(a),
		newNoteCommand(a),
		newGoalCommand(a),
		newStatsCommand(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// skipsTracker reports whether cmd is one of cobra's built-in commands that
// never touch tracker state.
func skipsTracker(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

func (a *app) open(cmd *cobra.Command) error {
	a.logger = a.cfg.NewLogger()
	a.logger.SetOutput(cmd.ErrOrStderr())
	if !a.cfg.Debug && cmd.Name() != "serve" {
		a.logger.SetLevel(log.WarnLevel)
	}

	sub, err := a.substrate(cmd.Context())
	if err != nil {
		return err
	}
	store := storage.New(sub, a.cfg.KeyPrefix, a.logger)
	a.tracker = tracker.New(store, a.logger)
	a.tracker.Load(cmd.Context())

	if a.rdb != nil {
		a.deduper = api.NewRedisDeduper(a.rdb, a.cfg.IdempotencyTTL)
	} else {
		a.deduper = api.NewMemoryDeduper(a.cfg.IdempotencyTTL)
	}
	return nil
}

func (a *app) substrate(ctx context.Context) (storage.Substrate, error) {
	switch a.cfg.Backend {
	case config.BackendRedis:
		opts, err := a.cfg.RedisOptions()
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.rdb = client
		a.closers = append(a.closers, client.Close)
		return storage.NewRedisSubstrate(client, ""), nil
	case config.BackendSQLite:
		sub, err := storage.OpenSQLiteSubstrate(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sub.Close)
		return sub, nil
	case config.BackendMemory:
		return storage.NewMemorySubstrate(), nil
	default:
		return storage.NewFileSubstrate(a.cfg.DataDir)
	}
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
