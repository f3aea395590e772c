// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query talks to the building-code query service.
//
// One question is one HTTP POST to <endpoint>/functions/v1/ncc-query. The
// request carries the question, the project's building class, state and
// construction type, and optionally the recent conversation. The client
// never retries; failures go straight back to the caller.
//
// # Key Types
//
//   - Client: sends questions using credentials from a CredentialSource
//   - Result: the answer text and its references
//   - APIError: a non-2xx response with the service's error message
//
// # Errors
//
//   - ErrNotConfigured: endpoint or API key missing (no request is made)
//   - ErrTransport: the request could not be sent or the body read
//   - ErrMalformedResponse: a 2xx body that is not a result object
//   - *APIError: the service answered with a non-2xx status
//
// # Usage
//
//	client := query.NewClient(resolver).WithLogger(logger)
//	res, err := client.Query(ctx, "What are the egress requirements?", project, history)
package query
