package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/store"
)

func newSnapshotCmd(a *app) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the dataset and store it in the snapshot file",
		Example: `  launchdash snapshot --snapshot launches.db
  launchdash snapshot --snapshot launches.db --keep 3
  launchdash snapshot --snapshot launches.db --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Dataset.Snapshot == "" {
				return errors.New("--snapshot (dataset.snapshot) is required")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !list {
				a.cfg.Dataset.FromSnapshot = false
				ds, err := a.loadDataset(ctx, false)
				if err != nil {
					return err
				}
				if _, err := a.saveSnapshot(ctx, ds); err != nil {
					return err
				}
			}

			repo, err := store.Open(a.cfg.Dataset.Snapshot)
			if err != nil {
				return err
			}
			defer repo.Close()

			snaps, err := repo.Snapshots(ctx)
			if err != nil {
				return err
			}
			for _, s := range snaps {
				fmt.Fprintf(out, "%s  %s  %5d launches  %s\n",
					s.ID, s.FetchedAt.Local().Format(time.DateTime), s.RowCount, s.Source)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list stored snapshots without fetching")
	return cmd
}
