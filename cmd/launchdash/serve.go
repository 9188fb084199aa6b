package main

import (
	"github.com/spf13/cobra"

	"github.com/launchdash/launchdash/dashboard"
	"github.com/launchdash/launchdash/render"
	"github.com/launchdash/launchdash/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the dataset and serve the dashboard",
		Example: `  launchdash serve
  launchdash serve --addr :8050 --source testdata/launches.csv
  LAUNCHDASH_SERVER_ADDRESS=0.0.0.0:8050 launchdash serve --snapshot launches.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ds, err := a.loadDataset(ctx, true)
			if err != nil {
				return err
			}

			dash := dashboard.New(ds, dashboard.WithLogger(a.logger))
			renderer := render.NewRenderer(a.cfg.Chart.Width, a.cfg.Chart.Height)
			srv := server.New(dash, renderer, server.Options{
				Address:         a.cfg.Server.Address,
				Compression:     a.cfg.Server.Compression,
				PrettyHTML:      a.cfg.Server.PrettyHTML,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
			}, a.logger)
			return srv.ListenAndServe(ctx)
		},
	}

	f := cmd.Flags()
	f.String("addr", "", "listen address (default 127.0.0.1:8050)")
	f.Bool("compress", true, "brotli-compress responses for clients that accept it")
	f.Bool("pretty", false, "indent the served HTML")
	f.Duration("shutdown-timeout", 0, "graceful shutdown timeout")
	return cmd
}
