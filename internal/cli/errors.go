// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for buildscope commands.
//
// Command handlers always return errors and never print them; main calls
// DisplayError once and exits with ExitCode(err).
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/buildscope/buildscope/internal/assistant"
	"github.com/buildscope/buildscope/internal/config"
	"github.com/buildscope/buildscope/internal/query"
	"github.com/buildscope/buildscope/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates missing or unreadable credentials or settings
	ExitConfigError = 3
	// ExitAuthError indicates the service rejected the API key
	ExitAuthError = 4
	// ExitNetworkError indicates a transport failure or a service error
	ExitNetworkError = 5
	// ExitNotFoundError indicates a project was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates a request timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrNoProject is returned when a command needs a project and none is
// selected.
var ErrNoProject = errors.New("no project selected; pass --project NAME or run 'buildscope project use NAME'")

// UsageError represents invalid command usage.
type UsageError struct {
	Command string
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Command, e.Reason)
	if e.Example != "" {
		msg += "\nExample: " + e.Example
	}
	return msg
}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string // e.g. "project"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func usageErr(command, reason, example string) error {
	return &UsageError{Command: command, Reason: reason, Example: example}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode determines the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var notFound *NotFoundError
	var apiErr *query.APIError
	var settingsErr config.ValidateErrors

	switch {
	case errors.As(err, &usage),
		errors.Is(err, ErrNoProject),
		errors.Is(err, assistant.ErrEmptyQuestion),
		errors.Is(err, storage.ErrInvalidProjectName):
		return ExitUsageError
	case errors.As(err, &notFound):
		return ExitNotFoundError
	case errors.Is(err, query.ErrNotConfigured), errors.As(err, &settingsErr):
		return ExitConfigError
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return ExitTimeoutError
	case errors.As(err, &apiErr):
		if apiErr.IsAuth() {
			return ExitAuthError
		}
		return ExitNetworkError
	case errors.Is(err, query.ErrTransport),
		errors.Is(err, query.ErrMalformedResponse),
		errors.Is(err, query.ErrResponseTooLarge):
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON error response in JSON mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		resp := NewJSONErrorResponse("", err)
		resp.Fields = errorFields(err)
		_ = resp.Write(w)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
	if errors.Is(err, query.ErrNotConfigured) {
		fmt.Fprintln(w, DimStyle.Render("Run 'buildscope config set --url URL --key KEY' or set BUILDSCOPE_SUPABASE_URL and BUILDSCOPE_API_KEY."))
	}
}

// errorFields adds structured details for known error types.
func errorFields(err error) map[string]any {
	fields := map[string]any{"exit_code": ExitCode(err)}

	var apiErr *query.APIError
	var notFound *NotFoundError
	var usage *UsageError
	switch {
	case errors.As(err, &apiErr):
		fields["error_type"] = "api_error"
		fields["status"] = apiErr.Status
	case errors.As(err, &notFound):
		fields["error_type"] = "not_found_error"
		fields["resource"] = notFound.Resource
		fields["id"] = notFound.ID
	case errors.As(err, &usage):
		fields["error_type"] = "usage_error"
	case errors.Is(err, query.ErrNotConfigured):
		fields["error_type"] = "config_error"
	default:
		fields["error_type"] = "generic_error"
	}
	return fields
}

// writeJSON encodes v indented to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
