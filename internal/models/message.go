package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ToolInvocation records a resolved tool call. It is never mutated after creation.
type ToolInvocation struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// Message represents a chat message in a session
type Message struct {
	ID              string           `json:"id"`
	Role            Role             `json:"role"`
	Content         string           `json:"content"`
	Timestamp       time.Time        `json:"timestamp"`
	ToolInvocations []ToolInvocation `json:"toolInvocations,omitempty"`
	// Interrupted marks an assistant message whose stream was cancelled
	// after some content had arrived.
	Interrupted bool `json:"interrupted,omitempty"`
}

// NewMessage creates a message with a fresh ID and the current timestamp
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Clone returns a copy that shares no slices with m
func (m Message) Clone() Message {
	if m.ToolInvocations != nil {
		inv := make([]ToolInvocation, len(m.ToolInvocations))
		copy(inv, m.ToolInvocations)
		m.ToolInvocations = inv
	}
	return m
}

// WireMessage is the {role, content} shape posted to the chat endpoint
type WireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for the chat endpoint
type ChatRequest struct {
	Messages []WireMessage `json:"messages"`
}

// ToWire converts messages to the request shape, skipping empty assistant placeholders
func ToWire(msgs []Message) []WireMessage {
	out := make([]WireMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleAssistant && m.Content == "" {
			continue
		}
		out = append(out, WireMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
