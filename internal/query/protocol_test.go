// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildscope/buildscope/internal/model"
)

var testProject = model.ProjectContext{
	Name:             "Test Project",
	BuildingClass:    "3",
	State:            "VIC",
	ConstructionType: "Type A",
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var obj map[string]any
	require.NoError(t, json.Unmarshal(data, &obj))
	return obj
}

func TestBuildRequest_MatchesContract(t *testing.T) {
	history := []model.Message{
		model.NewUserMessage("What are fire requirements?"),
		model.NewAssistantMessage("Fire requirements include...", nil),
		model.NewLoadingMessage(),
	}

	data, err := BuildRequest("egress requirements?", testProject, history)
	require.NoError(t, err)
	obj := decode(t, data)

	assert.Equal(t, "egress requirements?", obj["question"])
	assert.Equal(t, map[string]any{
		"building_class":    "3",
		"state":             "VIC",
		"construction_type": "Type A",
	}, obj["context"])

	chat, ok := obj["chat_history"].([]any)
	require.True(t, ok)
	require.Len(t, chat, 2)
	assert.Equal(t, map[string]any{"role": "user", "content": "What are fire requirements?"}, chat[0])
	assert.Equal(t, map[string]any{"role": "assistant", "content": "Fire requirements include..."}, chat[1])
}

func TestBuildRequest_NilHistoryOmitsKey(t *testing.T) {
	data, err := BuildRequest("question?", testProject, nil)
	require.NoError(t, err)

	_, present := decode(t, data)["chat_history"]
	assert.False(t, present)
}

func TestBuildRequest_EmptyHistoryIsEmptyArray(t *testing.T) {
	data, err := BuildRequest("question?", testProject, []model.Message{})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chat_history":[]`)
}

func TestBuildRequest_OnlyPlaceholdersIsEmptyArray(t *testing.T) {
	history := []model.Message{model.NewWelcomeMessage("hi"), model.NewLoadingMessage()}
	data, err := BuildRequest("q", testProject, history)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chat_history":[]`)
}

func TestBuildRequest_QuestionVerbatimAndNameNotSent(t *testing.T) {
	q := "  \"quoted\" <tags> & ünïcode\n"
	data, err := BuildRequest(q, testProject, nil)
	require.NoError(t, err)

	obj := decode(t, data)
	assert.Equal(t, q, obj["question"])
	assert.NotContains(t, string(data), "Test Project")
}

func TestBuildRequest_FieldOrder(t *testing.T) {
	data, err := BuildRequest("q", testProject, []model.Message{})
	require.NoError(t, err)
	assert.Equal(t,
		`{"question":"q","context":{"building_class":"3","state":"VIC","construction_type":"Type A"},"chat_history":[]}`,
		string(data))
}

func TestParseResponse(t *testing.T) {
	body := `{
		"answer": "The egress requirements state that...",
		"references": [
			{ "section": "D2.6", "title": "Exits from storeys" },
			{ "section": "D2.7", "title": "Travel distances" }
		]
	}`

	res, err := ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "The egress requirements state that...", res.Answer)
	assert.Equal(t, []model.Reference{
		{Section: "D2.6", Title: "Exits from storeys"},
		{Section: "D2.7", Title: "Travel distances"},
	}, res.References)
}

func TestParseResponse_EmptyAndMissingReferences(t *testing.T) {
	for _, body := range []string{
		`{"answer": "No relevant NCC sections found.", "references": []}`,
		`{"answer": "No relevant NCC sections found."}`,
		`{"answer": "No relevant NCC sections found.", "references": null}`,
	} {
		res, err := ParseResponse([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, "No relevant NCC sections found.", res.Answer)
		assert.NotNil(t, res.References)
		assert.Empty(t, res.References)
	}
}

func TestParseResponse_ExtraFieldsIgnored(t *testing.T) {
	res, err := ParseResponse([]byte(`{"answer": "ok", "model": "x", "references": []}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Answer)
}

func TestParseResponse_Malformed(t *testing.T) {
	for _, body := range []string{"not json", "null", "[]", `"text"`, "", `{"answer": 5}`} {
		_, err := ParseResponse([]byte(body))
		require.Error(t, err, "body %q", body)
		assert.True(t, errors.Is(err, ErrMalformedResponse), "body %q", body)
	}
}

func TestParseErrorMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error": "Missing required field: question"}`, "Missing required field: question"},
		{"Internal Server Error", "Internal Server Error"},
		{"", ""},
		{`{"message": "no error key"}`, `{"message": "no error key"}`},
		{`{"error": {"code": 1, "hint": "retry"}}`, `{"code":1,"hint":"retry"}`},
		{`{"error": 42}`, "42"},
		{`{"error": false}`, "false"},
		{`{"error": ["a", "b"]}`, `["a","b"]`},
		{`{"error": null}`, `{"error": null}`},
		{`["error"]`, `["error"]`},
		{`{"error": "a", "detail": "b"}`, "a"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseErrorMessage(tt.body), "body %q", tt.body)
	}
}
