// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/buildscope/buildscope/internal/model"
)

func userMsg(content string) model.Message { return model.NewUserMessage(content) }
func assistantMsg(content string) model.Message {
	return model.NewAssistantMessage(content, nil)
}

// pairs builds n question/answer pairs Q0,A0,...
func pairs(n int) []model.Message {
	msgs := make([]model.Message, 0, 2*n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, userMsg(fmt.Sprintf("Q%d", i)), assistantMsg(fmt.Sprintf("A%d", i)))
	}
	return msgs
}

// =============================================================================
// SAVE / LOAD TESTS
// =============================================================================

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	s := NewStore()
	refs := []model.Reference{{Section: "C3.2", Title: "Fire resistance"}}
	msgs := []model.Message{
		userMsg("What are fire requirements?"),
		model.NewAssistantMessage("Fire requirements include...", refs),
	}

	s.Save("ProjectA", msgs)
	loaded := s.Load("ProjectA")

	if len(loaded) != 2 {
		t.Fatalf("Load() len = %d, want 2", len(loaded))
	}
	if loaded[0].Content != "What are fire requirements?" || loaded[0].Role != model.RoleUser {
		t.Errorf("loaded[0] = %+v", loaded[0])
	}
	if loaded[1].Content != "Fire requirements include..." || loaded[1].Role != model.RoleAssistant {
		t.Errorf("loaded[1] = %+v", loaded[1])
	}
	if len(loaded[1].References) != 1 || loaded[1].References[0] != refs[0] {
		t.Errorf("references = %+v", loaded[1].References)
	}
	if !loaded[0].Timestamp.Equal(msgs[0].Timestamp) || loaded[0].ID != msgs[0].ID {
		t.Error("timestamp and ID should be preserved")
	}
}

func TestLoad_UnknownProjectIsEmpty(t *testing.T) {
	s := NewStore()
	loaded := s.Load("NonExistent")
	if loaded == nil || len(loaded) != 0 {
		t.Errorf("Load() = %v, want empty non-nil slice", loaded)
	}
}

func TestProjectSwitching(t *testing.T) {
	s := NewStore()
	s.Save("ProjectA", []model.Message{userMsg("Question for A"), assistantMsg("Answer for A")})
	s.Save("ProjectB", []model.Message{userMsg("Question for B"), assistantMsg("Answer for B")})

	if got := s.Load("ProjectA")[0].Content; got != "Question for A" {
		t.Errorf("ProjectA first = %q", got)
	}
	if got := s.Load("ProjectB")[0].Content; got != "Question for B" {
		t.Errorf("ProjectB first = %q", got)
	}
}

func TestSave_Overwrites(t *testing.T) {
	s := NewStore()
	s.Save("ProjectA", []model.Message{userMsg("Old")})
	s.Save("ProjectA", []model.Message{userMsg("New")})

	loaded := s.Load("ProjectA")
	if len(loaded) != 1 || loaded[0].Content != "New" {
		t.Errorf("Load() = %+v", loaded)
	}
}

func TestSave_DropsUIMessages(t *testing.T) {
	s := NewStore()
	s.Save("P", []model.Message{
		model.NewWelcomeMessage("hi"),
		userMsg("Q1"),
		model.NewLoadingMessage(),
		assistantMsg("A1"),
	})

	loaded := s.Load("P")
	if len(loaded) != 2 {
		t.Fatalf("len = %d, want 2", len(loaded))
	}
	for _, m := range loaded {
		if !m.IsConversational() {
			t.Errorf("stored non-conversational message %v", m.Role)
		}
	}
}

func TestSave_IsolatedFromCaller(t *testing.T) {
	s := NewStore()
	msgs := []model.Message{
		model.NewAssistantMessage("A", []model.Reference{{Section: "D1", Title: "Access"}}),
	}
	s.Save("P", msgs)

	msgs[0].Content = "mutated"
	msgs[0].References[0].Title = "mutated"

	loaded := s.Load("P")
	if loaded[0].Content != "A" || loaded[0].References[0].Title != "Access" {
		t.Errorf("store aliased caller's slice: %+v", loaded[0])
	}

	loaded[0].References[0].Title = "changed again"
	if s.Load("P")[0].References[0].Title != "Access" {
		t.Error("Load result aliases stored data")
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Save("ProjectA", []model.Message{userMsg("Q1")})
	s.Clear("ProjectA")

	if len(s.Load("ProjectA")) != 0 {
		t.Error("Clear should remove the session")
	}
	s.Clear("ProjectA") // no-op
}

// =============================================================================
// CAP TESTS
// =============================================================================

func TestEnforceCap(t *testing.T) {
	tests := []struct {
		name      string
		in        int
		wantLen   int
		wantFirst string
		wantLast  string
	}{
		{"over limit trims oldest", 11, 20, "Q1", "A10"},
		{"exactly at limit", 10, 20, "Q0", "A9"},
		{"under limit", 1, 2, "Q0", "A0"},
		{"far over limit", 50, 20, "Q40", "A49"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnforceCap(pairs(tt.in))
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].Content != tt.wantFirst || got[len(got)-1].Content != tt.wantLast {
				t.Errorf("range = %s..%s, want %s..%s",
					got[0].Content, got[len(got)-1].Content, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestEnforceCap_Idempotent(t *testing.T) {
	once := EnforceCap(pairs(15))
	twice := EnforceCap(once)
	if len(once) != len(twice) || once[0].ID != twice[0].ID {
		t.Error("EnforceCap should be idempotent")
	}
}

func TestEnforceCap_Empty(t *testing.T) {
	if got := EnforceCap(nil); len(got) != 0 {
		t.Errorf("EnforceCap(nil) = %v", got)
	}
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestHistoryForAPI_LastTen(t *testing.T) {
	history := HistoryForAPI(pairs(7))
	if len(history) != 10 {
		t.Fatalf("len = %d, want 10", len(history))
	}
	if history[0].Content != "Q2" || history[9].Content != "A6" {
		t.Errorf("range = %s..%s, want Q2..A6", history[0].Content, history[9].Content)
	}
}

func TestHistoryForAPI_FiltersUIMessages(t *testing.T) {
	msgs := []model.Message{
		model.NewWelcomeMessage("hello"),
		userMsg("Q1"),
		model.NewLoadingMessage(),
		assistantMsg("A1"),
		userMsg("Q2"),
		assistantMsg("A2"),
	}

	history := HistoryForAPI(msgs)
	if len(history) != 4 {
		t.Fatalf("len = %d, want 4", len(history))
	}
	for _, m := range history {
		if !m.IsConversational() {
			t.Errorf("history contains %v", m.Role)
		}
	}
}

func TestHistoryForAPI_UnderLimit(t *testing.T) {
	if got := len(HistoryForAPI(pairs(2))); got != 4 {
		t.Errorf("len = %d, want 4", got)
	}
}

func TestHistoryForAPI_FilterBeforeLimit(t *testing.T) {
	// Placeholders interleaved with 12 real messages must not eat into the
	// ten-message window.
	var msgs []model.Message
	for _, m := range pairs(6) {
		msgs = append(msgs, model.NewLoadingMessage(), m)
	}

	history := HistoryForAPI(msgs)
	if len(history) != 10 || history[0].Content != "Q1" {
		t.Errorf("history = %d messages starting %q", len(history), history[0].Content)
	}
}

// =============================================================================
// APPEND / NOTIFY TESTS
// =============================================================================

func TestAppend_CapsStoredSession(t *testing.T) {
	s := NewStore()
	s.Save("P", pairs(10))

	out := s.Append("P", userMsg("Q10"), assistantMsg("A10"))
	if len(out) != MessageCap {
		t.Fatalf("len = %d, want %d", len(out), MessageCap)
	}
	if out[0].Content != "Q1" || out[len(out)-1].Content != "A10" {
		t.Errorf("range = %s..%s", out[0].Content, out[len(out)-1].Content)
	}
	if got := len(s.Load("P")); got != MessageCap {
		t.Errorf("stored len = %d", got)
	}
}

func TestAppend_NewProject(t *testing.T) {
	s := NewStore()
	out := s.Append("Fresh", model.NewLoadingMessage(), userMsg("Q"))
	if len(out) != 1 || out[0].Content != "Q" {
		t.Errorf("Append() = %+v", out)
	}
}

func TestProjects(t *testing.T) {
	s := NewStore()
	s.Save("b", nil)
	s.Save("a", pairs(1))

	got := s.Projects()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Projects() = %v", got)
	}
}

func TestOnChange(t *testing.T) {
	s := NewStore()
	var changes []Change
	s.OnChange(func(c Change) { changes = append(changes, c) })
	s.OnChange(nil)

	s.Save("P", pairs(1))
	s.Append("P", userMsg("Q1"))
	s.Clear("P")
	s.Clear("P")

	want := []Change{
		{Project: "P", Kind: ChangeSaved, Count: 2},
		{Project: "P", Kind: ChangeSaved, Count: 3},
		{Project: "P", Kind: ChangeCleared},
	}
	if len(changes) != len(want) {
		t.Fatalf("got %d changes, want %d: %+v", len(changes), len(want), changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change[%d] = %+v, want %+v", i, changes[i], want[i])
		}
	}
}

func TestOnChange_CallbackMayReenter(t *testing.T) {
	s := NewStore()
	var seen int
	s.OnChange(func(c Change) { seen = len(s.Load(c.Project)) })

	s.Save("P", pairs(2))
	if seen != 4 {
		t.Errorf("callback saw %d messages, want 4", seen)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			s.Append("shared", userMsg(fmt.Sprintf("Q%d", i)))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Load("shared")
		}()
		go func() {
			defer wg.Done()
			_ = s.Projects()
		}()
	}
	wg.Wait()

	if got := len(s.Load("shared")); got != MessageCap {
		t.Errorf("len = %d, want %d", got, MessageCap)
	}
}
