package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/server"
)

// serveCmd exposes merged timelines and trend charts over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve merged timelines and trend charts over HTTP.",
	Long: `Start an HTTP server that answers the same questions as merge and trend.

Endpoints:
  GET /health
  GET /api/timelines/merged?events=7,9[&metric=likes][&format=json|csv|png]
  GET /api/events/{id}/trend[?format=svg|json|png][&closed=true]

Timeline flags given here become the defaults for every request.`,
	Example: `  civiclens serve --listen :9090
  curl 'localhost:9090/api/timelines/merged?events=7,9&format=csv'`,
	Args:    cobra.NoArgs,
	PreRunE: apiSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runServer(ctx); err != nil {
			contract.LogFatal("Cannot serve", err)
		}
	},
}

// runServer blocks until ctx is cancelled or the listener fails.
func runServer(ctx context.Context) error {
	srv := server.NewServer(logger, newClient(), cacheManager, cfg)
	return srv.Start(ctx, cfg.Listen)
}
