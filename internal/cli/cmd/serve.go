package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/shelf/internal/logging"
	"github.com/bnema/shelf/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the favicon API for the web UI",
	Long: `Serve the favicon API for the web UI.

The listen address comes from server.listen in the config file and can be
overridden with --listen. The config file is watched and log level changes
apply without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "listen address (overrides server.listen)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if app == nil {
		return errAppNotInitialized
	}
	log := logging.FromContext(app.Ctx())

	listen, _ := cmd.Flags().GetString("listen")
	if listen == "" {
		listen = app.Config.Server.Listen
	}

	srv, err := server.New(listen, app.Handler())
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if err := app.WatchConfig(); err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
	}

	ctx, stop := signal.NotifyContext(app.Ctx(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
