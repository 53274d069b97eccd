// Package store holds the application's observable chat and panel state.
//
// A Store is created by the application root and passed to whatever needs it;
// there is no package-level instance.
package store

import (
	"sort"
	"sync"

	"github.com/diogo/campuschat/internal/models"
)

// EventKind identifies a state change
type EventKind int

const (
	EventMessageAdded EventKind = iota
	EventMessageUpdated
	EventMessageRemoved
	EventPanelChanged
	EventLoadingChanged
)

// Event describes one state change. Message and Panel are copies.
type Event struct {
	Kind      EventKind
	SessionID string
	Message   models.Message
	Panel     PanelState
	Loading   bool
}

// PanelState is the currently open side panel
type PanelState struct {
	Active models.PanelKind
	Data   models.PanelData
}

// Open reports whether a panel is showing
func (p PanelState) Open() bool {
	return p.Active != models.PanelNone
}

// Store is safe for concurrent use. Listeners are called synchronously,
// outside the lock, in the order changes were made.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string][]models.Message
	loading   map[string]bool
	panel     PanelState
	listeners map[int]func(Event)
	nextID    int
}

// New creates an empty store
func New() *Store {
	return &Store{
		sessions:  make(map[string][]models.Message),
		loading:   make(map[string]bool),
		listeners: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for every future event and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// AddMessage appends msg to the session, or replaces the message with the same ID
func (s *Store) AddMessage(sessionID string, msg models.Message) {
	msg = msg.Clone()

	s.mu.Lock()
	msgs := s.sessions[sessionID]
	kind := EventMessageAdded
	replaced := false
	for i := range msgs {
		if msgs[i].ID == msg.ID {
			msgs[i] = msg
			replaced = true
			kind = EventMessageUpdated
			break
		}
	}
	if !replaced {
		s.sessions[sessionID] = append(msgs, msg)
	}
	s.mu.Unlock()

	s.emit(Event{Kind: kind, SessionID: sessionID, Message: msg.Clone()})
}

// UpdateMessage replaces the content of a message in place.
// It returns false when the message does not exist.
func (s *Store) UpdateMessage(sessionID, messageID, content string) bool {
	s.mu.Lock()
	var updated models.Message
	found := false
	msgs := s.sessions[sessionID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Content = content
			updated = msgs[i].Clone()
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.emit(Event{Kind: EventMessageUpdated, SessionID: sessionID, Message: updated})
	}
	return found
}

// RemoveMessage deletes a message. Missing messages are ignored.
func (s *Store) RemoveMessage(sessionID, messageID string) {
	s.mu.Lock()
	var removed models.Message
	found := false
	msgs := s.sessions[sessionID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			removed = msgs[i]
			s.sessions[sessionID] = append(msgs[:i:i], msgs[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.emit(Event{Kind: EventMessageRemoved, SessionID: sessionID, Message: removed})
	}
}

// Messages returns a copy of the session's messages in order
func (s *Store) Messages(sessionID string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.sessions[sessionID]
	out := make([]models.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

// Message returns one message by ID
func (s *Store) Message(sessionID, messageID string) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.sessions[sessionID] {
		if m.ID == messageID {
			return m.Clone(), true
		}
	}
	return models.Message{}, false
}

// ClearSession drops every message of a session
func (s *Store) ClearSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// OpenPanel shows a panel with the given data
func (s *Store) OpenPanel(update models.PanelUpdate) {
	state := PanelState{Active: update.Panel, Data: update.Data}

	s.mu.Lock()
	s.panel = state
	s.mu.Unlock()

	s.emit(Event{Kind: EventPanelChanged, Panel: state})
}

// ClosePanel hides the current panel
func (s *Store) ClosePanel() {
	s.mu.Lock()
	s.panel = PanelState{}
	s.mu.Unlock()

	s.emit(Event{Kind: EventPanelChanged})
}

// Panel returns the current panel state
func (s *Store) Panel() PanelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.panel
}

// BeginSend sets the session's loading flag. It returns false if a send is
// already in progress.
func (s *Store) BeginSend(sessionID string) bool {
	s.mu.Lock()
	if s.loading[sessionID] {
		s.mu.Unlock()
		return false
	}
	s.loading[sessionID] = true
	s.mu.Unlock()

	s.emit(Event{Kind: EventLoadingChanged, SessionID: sessionID, Loading: true})
	return true
}

// EndSend clears the session's loading flag
func (s *Store) EndSend(sessionID string) {
	s.mu.Lock()
	delete(s.loading, sessionID)
	s.mu.Unlock()

	s.emit(Event{Kind: EventLoadingChanged, SessionID: sessionID, Loading: false})
}

// Loading reports whether a send is in progress for the session
func (s *Store) Loading(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[sessionID]
}

func (s *Store) emit(ev Event) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
