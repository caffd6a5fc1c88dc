// Package cli defines the cobra commands for the essaychat binary.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ethanbaker/essaychat/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	envFile  string
	logLevel string
	logFile  string
	version  = "dev" // set via ldflags at build time

	cfg       *utils.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "essaychat",
	Short: "Chat with an essay question-answering service",
	Long: `essaychat is a conversational front-end for a question-answering service
over Paul Graham's essays. It keeps the conversation, forwards each question
to the service, and shows the answer, either in the terminal or over HTTP.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := setupLogging(logLevel, logFile, os.Stderr)
		if err != nil {
			return err
		}
		logCloser = closer

		cfg = utils.NewConfigFromEnv(envFile)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch the TUI if TTY, show help otherwise
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return cmd.Help()
		}
		return runTUI(cmd, args)
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file with configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write JSON logs to this file instead of stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(historyCmd)
}
