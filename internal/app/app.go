// Package app assembles a chat session and its supporting services from configuration.
package app

import (
	"context"
	"time"

	"github.com/ethanbaker/essaychat/internal/health"
	"github.com/ethanbaker/essaychat/internal/stores/archive"
	"github.com/ethanbaker/essaychat/pkg/chat"
	"github.com/ethanbaker/essaychat/pkg/sdk"
	"github.com/ethanbaker/essaychat/pkg/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultBackendURL = "http://localhost:8000"

// App is a running chat session with its backend client, monitor, and optional archive
type App struct {
	Config     *utils.Config
	Client     *sdk.Client
	Controller *chat.Controller
	Monitor    *health.Monitor

	store    *archive.MySqlStore
	recorder *archive.Recorder
}

// New builds the session described by cfg. The monitor is created but not started
func New(ctx context.Context, cfg *utils.Config) (*App, error) {
	client := sdk.NewClient(
		cfg.GetWithDefault("BACKEND_BASE_URL", DefaultBackendURL),
		cfg.Get("BACKEND_API_KEY"),
	)

	messages := chat.DefaultMessages()
	if path := cfg.Get("CHAT_MESSAGES_FILE"); path != "" {
		loaded, err := chat.LoadMessages(path)
		if err != nil {
			return nil, err
		}
		messages = loaded
	}

	a := &App{
		Config: cfg,
		Client: client,
		Controller: chat.NewController(client,
			chat.WithMessages(messages),
			chat.WithQueryTimeout(cfg.GetDurationWithDefault("QUERY_TIMEOUT", chat.DefaultQueryTimeout)),
		),
		Monitor: health.NewMonitor(client, cfg.GetDurationWithDefault("HEALTH_CHECK_INTERVAL", health.DefaultInterval)),
	}

	if cfg.GetBoolWithDefault("ARCHIVE_ENABLED", false) {
		if err := a.openArchive(ctx); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("component", "app").
		Str("backend", client.BaseURL()).
		Bool("archive", a.recorder != nil).
		Msg("session ready")

	return a, nil
}

func (a *App) openArchive(ctx context.Context) error {
	store, err := archive.NewMySqlStore(archive.DSNFromConfig(a.Config))
	if err != nil {
		return err
	}

	recorder, err := archive.NewRecorder(ctx, store, uuid.New())
	if err != nil {
		store.Close()
		return err
	}
	recorder.Attach(a.Controller.Transcript())

	a.store = store
	a.recorder = recorder
	return nil
}

// SessionID returns the archive session, or uuid.Nil when archiving is disabled
func (a *App) SessionID() uuid.UUID {
	if a.recorder == nil {
		return uuid.Nil
	}
	return a.recorder.SessionID()
}

// CheckBackend probes the backend once and logs a warning when it is not ready.
// Submissions are never gated on the result
func (a *App) CheckBackend(ctx context.Context) health.Status {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := a.Monitor.Check(ctx)
	if !status.Ready {
		log.Warn().Str("component", "app").Str("backend", a.Client.BaseURL()).Msg("backend is not ready yet, answers may fail")
	}
	return status
}

// Close flushes the archive and releases the database connection
func (a *App) Close() error {
	if a.recorder != nil {
		a.recorder.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			return errors.Wrap(err, "close archive")
		}
	}
	return nil
}
