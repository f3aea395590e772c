// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"errors"
	"fmt"
)

// Error variables for query failures.
var (
	// ErrNotConfigured indicates the endpoint or API key is missing.
	ErrNotConfigured = errors.New("query service not configured")

	// ErrTransport indicates the request could not be completed.
	ErrTransport = errors.New("query transport failed")

	// ErrMalformedResponse indicates a success body that is not a result.
	ErrMalformedResponse = errors.New("malformed query response")

	// ErrResponseTooLarge indicates the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("query response too large")
)

// APIError is a non-2xx response from the query service.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("NCC query failed (%d): %s", e.Status, e.Message)
}

// IsAuth reports whether the service rejected the credentials.
func (e *APIError) IsAuth() bool {
	return e.Status == 401 || e.Status == 403
}
