package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethanbaker/essaychat/internal/app"
	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Chat line by line on stdin and stdout",
	RunE:  runREPLCommand,
}

// submitter is the part of the controller the REPL drives
type submitter interface {
	Submit(ctx context.Context, rawText string) bool
	Transcript() transcript.Reader
}

func runREPLCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.CheckBackend(ctx)
	return runREPL(ctx, a.Controller, os.Stdin, os.Stdout)
}

// runREPL reads one question per line and prints each answer once it arrives.
// It returns when input ends, the user types 'exit', or ctx is cancelled
func runREPL(ctx context.Context, session submitter, in io.Reader, out io.Writer) error {
	reader := session.Transcript()

	// Print whatever the session already holds, normally just the greeting
	printed := 0
	printNew := func() {
		turns := reader.Turns()
		for _, turn := range turns[printed:] {
			if turn.Role == transcript.RoleAssistant {
				fmt.Fprintf(out, "Assistant: %s\n", turn.Content)
			}
		}
		printed = len(turns)
	}

	printNew()
	fmt.Fprintln(out, "Type 'exit' to quit.")

	// Create scanner for reading user input
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for ctx.Err() == nil {
		fmt.Fprint(out, "\n> ")

		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" {
			break
		}

		if !session.Submit(ctx, line) {
			continue
		}
		printNew()
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	return nil
}
