package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/talgya/psi-verify/internal/api"
	"github.com/talgya/psi-verify/internal/metrics"
)

func (a *app) serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and run history over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			srv := &api.Server{
				Catalog:     a.catalog,
				Store:       db,
				Metrics:     metrics.New(),
				AdminKey:    a.cfg.Server.AdminKey,
				CORSOrigins: a.cfg.Server.CORSOrigins,
				Workers:     a.cfg.Workers,
				Seed:        a.cfg.Seed,
				RunLimiter:  api.NewRateLimiter(a.cfg.Server.RunLimit, a.cfg.Server.RunWindow),
			}
			if c := a.openCache(); c != nil {
				defer c.Close()
				if err := c.Ping(cmd.Context()); err != nil {
					slog.Warn("redis unavailable, serving without cache", "addr", a.cfg.Redis.Addr, "err", err)
				} else {
					srv.Cache = c
				}
			}
			return srv.ListenAndServe(cmd.Context(), a.cfg.Server.Port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	return cmd
}
