package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"prism-tracker/api"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracker over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e := api.NewServer(a.tracker, a.logger, api.ServerOptions{
				Deduper: a.deduper,
				Pprof:   a.cfg.Pprof,
			})
			return api.Serve(ctx, e, addr, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $LISTEN_ADDR or :8080)")
	return cmd
}
