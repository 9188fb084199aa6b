package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/config"
	"github.com/launchdash/launchdash/dataset"
	"github.com/launchdash/launchdash/store"
)

// ============================================================================
// LAUNCHDASH CLI — SpaceX launch records dashboard
// ============================================================================

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "launchdash",
		Short: "SpaceX launch records dashboard",
		Long: `launchdash loads the SpaceX launch records CSV and serves a dashboard with
a success pie chart per launch site and a payload/outcome scatter chart.

Configuration is read from launchdash.yaml (or --config), LAUNCHDASH_*
environment variables and flags, flags winning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./launchdash.yaml)")
	pf.String("source", "", "launch records CSV URL or file path")
	pf.Duration("timeout", 0, "dataset download timeout")
	pf.String("snapshot", "", "SQLite snapshot file")
	pf.Bool("from-snapshot", false, "load the latest snapshot instead of the source")
	pf.Int("keep", 5, "snapshots to keep after saving one; 0 keeps all")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.Int("width", 0, "chart width in pixels")
	pf.Int("height", 0, "chart height in pixels")

	root.AddCommand(
		newServeCmd(a),
		newQueryCmd(a),
		newSnapshotCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "launchdash %s\n", version)
		},
	}
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// loadDataset reads the launches from the latest snapshot or from the
// configured source. A source load is stored as a new snapshot when a
// snapshot file is configured and save is set.
func (a *app) loadDataset(ctx context.Context, save bool) (*dataset.Dataset, error) {
	dc := a.cfg.Dataset

	if dc.FromSnapshot {
		repo, err := store.Open(dc.Snapshot)
		if err != nil {
			return nil, err
		}
		defer repo.Close()

		snap, launches, err := repo.LatestSnapshot(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "loading snapshot from %s", dc.Snapshot)
		}
		a.logger.WithFields(logrus.Fields{
			"snapshot":   snap.ID,
			"source":     snap.Source,
			"fetched_at": snap.FetchedAt,
		}).Info("using snapshot")
		return dataset.New(launches)
	}

	ds, err := dataset.Load(ctx, dc.Source,
		dataset.WithTimeout(dc.Timeout),
		dataset.WithLogger(a.logger),
	)
	if err != nil {
		return nil, errors.Wrap(err, "loading dataset")
	}

	if save && dc.Snapshot != "" {
		if _, err := a.saveSnapshot(ctx, ds); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func (a *app) saveSnapshot(ctx context.Context, ds *dataset.Dataset) (*store.Snapshot, error) {
	repo, err := store.Open(a.cfg.Dataset.Snapshot)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	snap, err := repo.SaveSnapshot(ctx, a.cfg.Dataset.Source, ds.Launches())
	if err != nil {
		return nil, err
	}
	a.logger.WithFields(logrus.Fields{
		"snapshot": snap.ID,
		"launches": snap.RowCount,
		"file":     a.cfg.Dataset.Snapshot,
	}).Info("snapshot saved")

	if keep := a.cfg.Dataset.Keep; keep > 0 {
		removed, err := repo.Prune(ctx, keep)
		if err != nil {
			return nil, err
		}
		if removed > 0 {
			a.logger.WithField("removed", removed).Info("old snapshots pruned")
		}
	}
	return snap, nil
}
