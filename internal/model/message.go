// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the kind of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleWelcome   Role = "welcome"
	RoleLoading   Role = "loading"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsConversational reports whether messages with this role belong to the
// conversation history (and therefore to storage and the wire protocol).
func (r Role) IsConversational() bool {
	return r == RoleUser || r == RoleAssistant
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "BuildScope"
	case RoleWelcome:
		return "Welcome"
	case RoleLoading:
		return "..."
	default:
		return string(r)
	}
}

// =============================================================================
// REFERENCE TYPE
// =============================================================================

// Reference is a citation the query service attaches to an answer.
type Reference struct {
	Section string `json:"section"`
	Title   string `json:"title"`
}

// String formats the reference for display, e.g. "D2.6 Exits from storeys".
func (r Reference) String() string {
	switch {
	case r.Section == "":
		return r.Title
	case r.Title == "":
		return r.Section
	default:
		return r.Section + " " + r.Title
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in a conversation.
//
// Messages are immutable once appended to a session. A Loading message is a
// placeholder the UI replaces when the answer arrives.
type Message struct {
	ID         string      `json:"id"`
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	References []Reference `json:"references,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewMessage creates a message with a fresh ID and the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user question.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an answer with its references.
func NewAssistantMessage(content string, refs []Reference) Message {
	m := NewMessage(RoleAssistant, content)
	if len(refs) > 0 {
		m.References = append([]Reference(nil), refs...)
	}
	return m
}

// NewWelcomeMessage creates a UI-only greeting.
func NewWelcomeMessage(content string) Message {
	return NewMessage(RoleWelcome, content)
}

// NewLoadingMessage creates a UI-only placeholder shown while a query is
// outstanding.
func NewLoadingMessage() Message {
	return NewMessage(RoleLoading, "")
}

// IsConversational reports whether the message belongs to the history.
func (m Message) IsConversational() bool {
	return m.Role.IsConversational()
}

// Clone returns a deep copy of the message. The references slice is copied
// so the clone shares no mutable state with m.
func (m Message) Clone() Message {
	c := m
	if m.References != nil {
		c.References = make([]Reference, len(m.References))
		copy(c.References, m.References)
	}
	return c
}

// FilterConversational returns the user and assistant messages of msgs in
// their original order. The result never aliases msgs.
func FilterConversational(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.IsConversational() {
			out = append(out, m.Clone())
		}
	}
	return out
}
