package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ethanbaker/essaychat/internal/stores/archive"
	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Print an archived conversation",
	Long: `Print the turns of a conversation recorded while ARCHIVE_ENABLED was set.
The session ID is logged when the session starts.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	sessionID, err := uuid.Parse(args[0])
	if err != nil {
		return errors.Wrapf(err, "invalid session id %q", args[0])
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	store, err := archive.NewMySqlStore(archive.DSNFromConfig(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	turns, err := store.ListTurns(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return errors.Errorf("no turns archived for session %s", sessionID)
	}

	printHistory(os.Stdout, turns)
	return nil
}

func printHistory(out io.Writer, turns []transcript.Turn) {
	for _, turn := range turns {
		fmt.Fprintf(out, "[%s] %s: %s\n", turn.CreatedAt.Format("2006-01-02 15:04:05"), turn.Role, turn.Content)
	}
}
