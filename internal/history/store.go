// Package history provides local storage of finished chat sessions.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/diogo/campuschat/internal/config"
	"github.com/diogo/campuschat/internal/models"
)

const maxTitleLen = 50

// Conversation is a persisted chat session
type Conversation struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Endpoint  string           `json:"endpoint,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Messages  []models.Message `json:"messages"`
}

// ToolCallCount returns the number of tool invocations across all messages
func (c *Conversation) ToolCallCount() int {
	n := 0
	for _, m := range c.Messages {
		n += len(m.ToolInvocations)
	}
	return n
}

// Store manages conversation history persistence, one JSON file per session
type Store struct {
	baseDir  string
	endpoint string
	mu       sync.RWMutex
}

// NewStore creates a history store rooted at dir
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &Store{baseDir: dir}, nil
}

// DefaultStore creates a store in the default location
func DefaultStore() (*Store, error) {
	dir, err := config.GetHistoryDir()
	if err != nil {
		return nil, err
	}
	return NewStore(dir)
}

// SetEndpoint records which endpoint new conversations were held with
func (s *Store) SetEndpoint(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoint = endpoint
}

// SaveSession writes the full message list of a session, creating the
// conversation on first save. Empty assistant placeholders are not stored.
func (s *Store) SaveSession(sessionID string, msgs []models.Message) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv, err := s.loadConversation(sessionID)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		conv = &Conversation{
			ID:        sessionID,
			Endpoint:  s.endpoint,
			CreatedAt: now,
		}
	}

	conv.Messages = make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == models.RoleAssistant && m.Content == "" && len(m.ToolInvocations) == 0 {
			continue
		}
		conv.Messages = append(conv.Messages, m.Clone())
	}
	if conv.Title == "" {
		conv.Title = titleFrom(conv.Messages, now)
	}
	conv.UpdatedAt = now

	return s.saveConversation(conv)
}

// GetConversation retrieves a conversation by ID
func (s *Store) GetConversation(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadConversation(id)
}

// ListConversations returns all conversations, most recent first
func (s *Store) ListConversations() ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var conversations []*Conversation
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		conv, err := s.loadConversation(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // corrupted
		}
		conversations = append(conversations, conv)
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})

	return conversations, nil
}

// DeleteConversation removes a conversation
func (s *Store) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.conversationPath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("conversation not found: %s", id)
		}
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	return nil
}

// UpdateTitle updates the title of a conversation
func (s *Store) UpdateTitle(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.loadConversation(id)
	if err != nil {
		return err
	}

	conv.Title = title
	conv.UpdatedAt = time.Now()

	return s.saveConversation(conv)
}

// ClearAll deletes all conversations
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to read history directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to delete %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func (s *Store) conversationPath(id string) string {
	return filepath.Join(s.baseDir, filepath.Base(id)+".json")
}

// notFoundError wraps fs.ErrNotExist for a missing conversation file
type notFoundError struct {
	id  string
	err error
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("conversation not found: %s", e.id)
}

func (e *notFoundError) Unwrap() error {
	return e.err
}

func (s *Store) loadConversation(id string) (*Conversation, error) {
	data, err := os.ReadFile(s.conversationPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &notFoundError{id: id, err: err}
		}
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse conversation: %w", err)
	}

	return &conv, nil
}

func (s *Store) saveConversation(conv *Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	tmp := s.conversationPath(conv.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write conversation: %w", err)
	}
	if err := os.Rename(tmp, s.conversationPath(conv.ID)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write conversation: %w", err)
	}

	return nil
}

func titleFrom(msgs []models.Message, now time.Time) string {
	for _, m := range msgs {
		if m.Role != models.RoleUser {
			continue
		}
		title := strings.Join(strings.Fields(m.Content), " ")
		if runes := []rune(title); len(runes) > maxTitleLen {
			title = string(runes[:maxTitleLen]) + "..."
		}
		if title != "" {
			return title
		}
	}
	return fmt.Sprintf("Chat %s", now.Format("2006-01-02 15:04"))
}
