// json_output.go - JSON output for scripting.
//
// Every command accepts --json and then writes exactly one JSONResponse to
// stdout; human-readable notices go to stderr.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"io"
	"time"

	"github.com/buildscope/buildscope/internal/model"
)

// JSONResponse is the envelope for all --json output.
type JSONResponse struct {
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data any `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Fields holds structured error details (error_type, exit_code, ...).
	Fields map[string]any `json:"details,omitempty"`

	Timestamp string `json:"timestamp"`
	Command   string `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w.
func (r *JSONResponse) Write(w io.Writer) error {
	return writeJSON(w, r)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// AskData is the payload of "ask --json".
type AskData struct {
	Project    string            `json:"project"`
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	References []model.Reference `json:"references"`
	// HistorySize is the number of stored messages after the turn.
	HistorySize int   `json:"history_size"`
	ElapsedMs   int64 `json:"elapsed_ms"`
}

// ProjectData is one project in "project list/show --json".
type ProjectData struct {
	Name             string `json:"name"`
	BuildingClass    string `json:"building_class"`
	State            string `json:"state"`
	ConstructionType string `json:"construction_type"`
	Current          bool   `json:"current"`
}

func projectData(p model.ProjectContext, current string) ProjectData {
	return ProjectData{
		Name:             p.Name,
		BuildingClass:    p.BuildingClass,
		State:            p.State,
		ConstructionType: p.ConstructionType,
		Current:          current != "" && p.Name == current,
	}
}

// ConfigData is the payload of "config show --json". The key is never
// included, only its fingerprint.
type ConfigData struct {
	CredentialsPath string `json:"credentials_path"`
	SettingsPath    string `json:"settings_path"`
	Endpoint        string `json:"endpoint"`
	EndpointSource  string `json:"endpoint_source"`
	KeyFingerprint  string `json:"key_fingerprint"`
	KeySource       string `json:"key_source"`
	Configured      bool   `json:"configured"`
	ProjectsDir     string `json:"projects_dir"`
	CurrentProject  string `json:"current_project"`
	WordWrap        int    `json:"word_wrap"`
	Rich            bool   `json:"rich"`
}

// VersionData is the payload of "version --json".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}
