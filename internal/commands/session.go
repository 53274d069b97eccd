package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/diogo/campuschat/internal/chat"
	"github.com/diogo/campuschat/internal/config"
	apierrors "github.com/diogo/campuschat/internal/errors"
	"github.com/diogo/campuschat/internal/history"
	"github.com/diogo/campuschat/internal/store"
)

// newClient builds the chat client from config and the saved session cookie.
// Without a cookie the client still works for anonymous browsing.
func newClient(cfg config.Config) (*chat.Client, error) {
	opts := []chat.ClientOption{
		chat.WithEndpoint(cfg.Endpoint),
		chat.WithTimeout(cfg.RequestTimeoutDuration()),
	}

	cookies, err := config.LoadCookies()
	switch {
	case err == nil:
		opts = append(opts, chat.WithSessionCookie(cookies.GetSession()))
	case errors.Is(err, apierrors.ErrNoSessionCookie):
		slog.Debug("no session cookie, continuing signed out")
	default:
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}

	client, err := chat.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// newSession wires a session to the store, the history recorder and the
// stream settings from config
func newSession(cfg config.Config, client chat.Streamer, st *store.Store, rec *history.Store, extra ...chat.SessionOption) *chat.Session {
	opts := []chat.SessionOption{
		chat.WithSessionLogger(slog.Default()),
		chat.WithReconcilerOptions(
			chat.WithIdleTimeout(cfg.IdleTimeoutDuration()),
			chat.WithTrailingFlush(cfg.FlushTrailingLine),
		),
	}
	if rec != nil {
		rec.SetEndpoint(cfg.Endpoint)
		opts = append(opts, chat.WithRecorder(rec))
	}
	opts = append(opts, extra...)
	return chat.NewSession(client, st, opts...)
}

// openHistory opens the default history store. History is best effort, so
// failures are logged and yield nil.
func openHistory() *history.Store {
	hs, err := history.DefaultStore()
	if err != nil {
		slog.Warn("history disabled", "error", err)
		return nil
	}
	return hs
}
