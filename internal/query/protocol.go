// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buildscope/buildscope/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// Request is the JSON body sent to the query function.
type Request struct {
	Question string         `json:"question"`
	Context  RequestContext `json:"context"`
	// ChatHistory is a pointer so that "no history" (nil, key omitted) and
	// "empty history" (pointer to empty slice, []) encode differently.
	ChatHistory *[]HistoryEntry `json:"chat_history,omitempty"`
}

// RequestContext is the project scope of a question.
type RequestContext struct {
	BuildingClass    string `json:"building_class"`
	State            string `json:"state"`
	ConstructionType string `json:"construction_type"`
}

// HistoryEntry is one prior message in the request.
type HistoryEntry struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Result is a successful answer.
type Result struct {
	Answer     string            `json:"answer"`
	References []model.Reference `json:"references"`
}

// =============================================================================
// ENCODING
// =============================================================================

// NewRequest builds the request for question. A nil history omits
// chat_history; a non-nil history is filtered to user and assistant
// messages.
func NewRequest(question string, project model.ProjectContext, history []model.Message) Request {
	req := Request{
		Question: question,
		Context: RequestContext{
			BuildingClass:    project.BuildingClass,
			State:            project.State,
			ConstructionType: project.ConstructionType,
		},
	}

	if history != nil {
		entries := make([]HistoryEntry, 0, len(history))
		for _, m := range history {
			if !m.IsConversational() {
				continue
			}
			entries = append(entries, HistoryEntry{Role: string(m.Role), Content: m.Content})
		}
		req.ChatHistory = &entries
	}

	return req
}

// BuildRequest returns the encoded request body. See NewRequest.
func BuildRequest(question string, project model.ProjectContext, history []model.Message) ([]byte, error) {
	data, err := json.Marshal(NewRequest(question, project, history))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return data, nil
}

// =============================================================================
// DECODING
// =============================================================================

// ParseResponse decodes a success body. Anything other than a JSON object
// (including null) fails with ErrMalformedResponse.
func ParseResponse(body []byte) (*Result, error) {
	var res *Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: empty result", ErrMalformedResponse)
	}
	if res.References == nil {
		res.References = []model.Reference{}
	}
	return res, nil
}

// ParseErrorMessage extracts the "error" field from an error body. A string
// is returned as is; numbers, booleans, arrays and objects as compact JSON.
// A missing or null field, or a body that is not a JSON object, returns the
// body unchanged.
func ParseErrorMessage(body string) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return body
	}

	raw, ok := obj["error"]
	if !ok || string(raw) == "null" {
		return body
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return body
	}
	return compact.String()
}
