package cli

import (
	"github.com/ethanbaker/essaychat/internal/app"
	"github.com/ethanbaker/essaychat/internal/tui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Chat in a full-screen terminal UI",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Console logs would draw over the UI
	if logFile == "" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}

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

	return tui.Run(ctx, a.Controller)
}
