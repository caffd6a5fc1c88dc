package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethanbaker/essaychat/pkg/chat"
	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoController(t *testing.T, err error) *chat.Controller {
	t.Helper()
	return chat.NewController(chat.AnswererFunc(func(_ context.Context, question string) (string, error) {
		if err != nil {
			return "", err
		}
		return "you asked: " + question, nil
	}))
}

func TestREPL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		err     error
		want    []string
		wantLen int
		notWant []string
	}{
		{
			name:    "greeting and answers",
			input:   "What is YC?\nWhy startups?\n",
			want:    []string{chat.DefaultGreeting, "Assistant: you asked: What is YC?", "Assistant: you asked: Why startups?"},
			wantLen: 5,
		},
		{
			name:    "exit stops the loop",
			input:   "first\n  exit  \nsecond\n",
			want:    []string{"Assistant: you asked: first"},
			notWant: []string{"second"},
			wantLen: 3,
		},
		{
			name:    "blank lines are skipped",
			input:   "\n   \nhello\n",
			want:    []string{"Assistant: you asked: hello"},
			wantLen: 3,
		},
		{
			name:    "failures show the apology",
			input:   "hello\n",
			err:     errors.New("connection refused"),
			want:    []string{"Assistant: " + chat.DefaultApology},
			wantLen: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := echoController(t, tt.err)
			var out bytes.Buffer

			err := runREPL(context.Background(), ctrl, strings.NewReader(tt.input), &out)
			require.NoError(t, err)

			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out.String(), w)
			}
			assert.Equal(t, tt.wantLen, ctrl.Transcript().Len())
		})
	}
}

func TestREPLStopsOnCancelledContext(t *testing.T) {
	ctrl := echoController(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, runREPL(ctx, ctrl, strings.NewReader("hello\n"), &out))
	assert.Equal(t, 1, ctrl.Transcript().Len())
}

func TestPrintHistory(t *testing.T) {
	at := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	turns := []transcript.Turn{
		{ID: "1", Role: transcript.RoleAssistant, Content: "Hi!", CreatedAt: at},
		{ID: "2", Role: transcript.RoleUser, Content: "What is YC?", CreatedAt: at},
	}

	var out bytes.Buffer
	printHistory(&out, turns)

	assert.Equal(t, "[2024-03-04 05:06:07] assistant: Hi!\n[2024-03-04 05:06:07] user: What is YC?\n", out.String())
}

func TestSetupLogging(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := setupLogging("loud", "", &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("console", func(t *testing.T) {
		closer, err := setupLogging("debug", "", &bytes.Buffer{})
		require.NoError(t, err)
		assert.NoError(t, closer.Close())
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "essaychat.log")
		closer, err := setupLogging("info", path, &bytes.Buffer{})
		require.NoError(t, err)
		defer closer.Close()

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})
}
