// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sort"
	"sync"

	"github.com/buildscope/buildscope/internal/model"
)

const (
	// MessageCap is the maximum number of messages kept per conversation.
	MessageCap = 20
	// APIHistoryLimit is the maximum number of prior messages sent as context.
	APIHistoryLimit = 10
)

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

// ChangeKind describes what happened to a session.
type ChangeKind int

const (
	ChangeSaved ChangeKind = iota
	ChangeCleared
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSaved:
		return "saved"
	case ChangeCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Change is passed to OnChange callbacks after a mutation.
type Change struct {
	Project string
	Kind    ChangeKind
	// Count is the number of stored messages after the change.
	Count int
}

// =============================================================================
// STORE
// =============================================================================

// Store holds one conversation per project. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string][]model.Message
	onChange []func(Change)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string][]model.Message)}
}

// OnChange registers fn to run after every Save, Append or Clear. Callbacks
// run outside the store lock, in registration order.
func (s *Store) OnChange(fn func(Change)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Save replaces the project's session with the user and assistant messages
// of msgs. The stored messages are deep copies.
func (s *Store) Save(project string, msgs []model.Message) {
	stored := model.FilterConversational(msgs)

	s.mu.Lock()
	s.sessions[project] = stored
	callbacks := s.onChange
	s.mu.Unlock()

	notify(callbacks, Change{Project: project, Kind: ChangeSaved, Count: len(stored)})
}

// Load returns a copy of the project's session, or an empty slice when
// there is none.
func (s *Store) Load(project string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.sessions[project])
}

// Clear removes the project's session.
func (s *Store) Clear(project string) {
	s.mu.Lock()
	_, existed := s.sessions[project]
	delete(s.sessions, project)
	callbacks := s.onChange
	s.mu.Unlock()

	if existed {
		notify(callbacks, Change{Project: project, Kind: ChangeCleared})
	}
}

// Append adds msgs to the project's session, enforces MessageCap and
// returns a copy of the result. Non-conversational messages are dropped.
func (s *Store) Append(project string, msgs ...model.Message) []model.Message {
	s.mu.Lock()
	combined := append(cloneAll(s.sessions[project]), model.FilterConversational(msgs)...)
	combined = EnforceCap(combined)
	s.sessions[project] = combined
	out := cloneAll(combined)
	callbacks := s.onChange
	s.mu.Unlock()

	notify(callbacks, Change{Project: project, Kind: ChangeSaved, Count: len(out)})
	return out
}

// Projects returns the names of projects with a stored session, sorted.
func (s *Store) Projects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.sessions))
	for name := range s.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// HISTORY HELPERS
// =============================================================================

// EnforceCap drops messages from the front until at most MessageCap remain.
// The returned slice shares msgs' backing array.
func EnforceCap(msgs []model.Message) []model.Message {
	if len(msgs) <= MessageCap {
		return msgs
	}
	return msgs[len(msgs)-MessageCap:]
}

// HistoryForAPI returns the last APIHistoryLimit user and assistant messages
// of msgs, oldest first.
func HistoryForAPI(msgs []model.Message) []model.Message {
	conv := model.FilterConversational(msgs)
	if len(conv) > APIHistoryLimit {
		conv = conv[len(conv)-APIHistoryLimit:]
	}
	return conv
}

func cloneAll(msgs []model.Message) []model.Message {
	out := make([]model.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

func notify(callbacks []func(Change), c Change) {
	for _, fn := range callbacks {
		fn(c)
	}
}
