package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	apierrors "github.com/diogo/campuschat/internal/errors"
	"github.com/diogo/campuschat/internal/models"
)

// SessionStore is the application state a session reads and writes
type SessionStore interface {
	MessageSink
	PanelSink
	Messages(sessionID string) []models.Message
	BeginSend(sessionID string) bool
	EndSend(sessionID string)
}

// Recorder persists a finished session's messages
type Recorder interface {
	SaveSession(sessionID string, msgs []models.Message) error
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithSessionID resumes an existing session instead of starting a new one
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// WithRecorder persists the conversation after each finished send
func WithRecorder(rec Recorder) SessionOption {
	return func(s *Session) {
		s.recorder = rec
	}
}

// WithSessionLogger sets the logger for the session and its reconciler
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithReconcilerOptions passes options through to the session's reconciler
func WithReconcilerOptions(opts ...ReconcilerOption) SessionOption {
	return func(s *Session) {
		s.reconcilerOpts = append(s.reconcilerOpts, opts...)
	}
}

// Session is one conversation with the assistant. Sends are serialized
// through the store's loading flag; a second Send while one is running
// fails with ErrSendInProgress.
type Session struct {
	id             string
	client         Streamer
	store          SessionStore
	recorder       Recorder
	logger         *slog.Logger
	reconciler     *Reconciler
	reconcilerOpts []ReconcilerOption

	mu    sync.RWMutex
	state State
}

// NewSession creates a session bound to a streamer and a store
func NewSession(client Streamer, st SessionStore, opts ...SessionOption) *Session {
	s := &Session{
		id:     uuid.NewString(),
		client: client,
		store:  st,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	rOpts := append([]ReconcilerOption{WithLogger(s.logger)}, s.reconcilerOpts...)
	s.reconciler = NewReconciler(st, st, rOpts...)
	return s
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.id
}

// State returns the state of the latest send
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Messages returns the session's messages from the store
func (s *Session) Messages() []models.Message {
	return s.store.Messages(s.id)
}

// Restore loads previously saved messages into the store
func (s *Session) Restore(msgs []models.Message) {
	for _, m := range msgs {
		s.store.AddMessage(s.id, m)
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()
	s.logger.Debug("session state", "session", s.id, "from", prev.String(), "to", state.String())
}

// Send posts prompt with the conversation so far and streams the reply into
// the store. It returns the finalized assistant message.
//
// Transport failures and stalled streams remove the placeholder. When ctx is
// cancelled mid-stream, any partial content is kept and marked Interrupted.
func (s *Session) Send(ctx context.Context, prompt string) (models.Message, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.Message{}, apierrors.ErrEmptyPrompt
	}

	if !s.store.BeginSend(s.id) {
		return models.Message{}, apierrors.ErrSendInProgress
	}
	defer s.store.EndSend(s.id)

	s.setState(StateSending)

	s.store.AddMessage(s.id, models.NewMessage(models.RoleUser, prompt))
	wire := models.ToWire(s.store.Messages(s.id))

	placeholder := models.NewMessage(models.RoleAssistant, "")
	s.store.AddMessage(s.id, placeholder)

	body, err := s.client.Stream(ctx, wire)
	if err != nil {
		s.fail(placeholder.ID, err)
		return models.Message{}, err
	}
	defer func() {
		_ = body.Close()
	}()

	s.setState(StateStreaming)

	res, err := s.reconciler.Run(ctx, s.id, placeholder, body)
	if err != nil {
		if isCancellation(err) && res.Message.Content != "" {
			partial := res.Message
			partial.Interrupted = true
			s.store.AddMessage(s.id, partial)
			s.setState(StateFailed)
			s.logger.Info("send cancelled, keeping partial reply", "session", s.id, "chars", len(partial.Content))
			return partial, err
		}
		s.fail(placeholder.ID, err)
		return models.Message{}, err
	}

	final := res.Message
	s.store.AddMessage(s.id, final)
	s.setState(StateFinished)

	if res.Malformed > 0 {
		s.logger.Warn("stream contained malformed lines", "session", s.id, "count", res.Malformed)
	}

	if s.recorder != nil {
		if err := s.recorder.SaveSession(s.id, s.store.Messages(s.id)); err != nil {
			s.logger.Warn("failed to save session history", "session", s.id, "error", err)
		}
	}

	return final, nil
}

func (s *Session) fail(placeholderID string, err error) {
	s.store.RemoveMessage(s.id, placeholderID)
	s.setState(StateFailed)
	s.logger.Error("send failed", "session", s.id, "error", err)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
