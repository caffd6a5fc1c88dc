package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethanbaker/essaychat/internal/api"
	"github.com/ethanbaker/essaychat/internal/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat session over HTTP",
	Long: `Start the HTTP API. Clients read the transcript, submit messages, and
follow new turns through a server-sent event stream.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Monitor.Start(); err != nil {
		return err
	}
	defer a.Monitor.Stop()

	err = api.Start(ctx, cfg, api.Dependencies{
		Session:    a.Controller,
		Monitor:    a.Monitor,
		BackendURL: a.Client.BaseURL(),
	})
	log.Info().Str("component", "cli").Msg("server stopped")
	return err
}

// commandContext returns a context cancelled on interrupt
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
