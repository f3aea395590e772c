// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/buildscope/buildscope/internal/config"
	"github.com/buildscope/buildscope/internal/model"
)

// Configuration constants for the query service.
const (
	// FunctionPath is appended to the configured endpoint.
	FunctionPath = "/functions/v1/ncc-query"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 120 * time.Second

	// DefaultMinInterval spaces out consecutive questions.
	DefaultMinInterval = time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024

	// MaxErrorBodySize caps how much of a non-success body is kept for the
	// error message.
	MaxErrorBodySize = 64 * 1024
)

// sharedTransport pools connections across clients.
// SECURITY: TLS verification required
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        10,
	MaxIdleConnsPerHost: 2,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// CredentialSource supplies the endpoint and API key. *config.Resolver
// implements it.
type CredentialSource interface {
	Endpoint() (string, bool)
	APIKey() (string, bool)
}

// Client sends questions to the query service. Safe for concurrent use once
// configured.
type Client struct {
	creds      CredentialSource
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a client with the default timeout and pacing. Logs are
// discarded until WithLogger is called.
func NewClient(creds CredentialSource) *Client {
	return &Client{
		creds: creds,
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
		logger:  log.New(io.Discard, "", 0),
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMinInterval sets the minimum spacing between requests. Zero or less
// disables pacing.
func (c *Client) WithMinInterval(d time.Duration) *Client {
	if d <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Every(d), 1)
	return c
}

// WithLogger sets the request logger. Nil restores the discard logger.
func (c *Client) WithLogger(l *log.Logger) *Client {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	c.logger = l
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// Configured reports whether both credentials resolve.
func (c *Client) Configured() bool {
	_, _, ok := c.credentials()
	return ok
}

// URL returns the full function URL, or ErrNotConfigured.
func (c *Client) URL() (string, error) {
	endpoint, _, ok := c.credentials()
	if !ok {
		return "", ErrNotConfigured
	}
	return functionURL(endpoint), nil
}

func (c *Client) credentials() (endpoint, key string, ok bool) {
	if c.creds == nil {
		return "", "", false
	}
	endpoint, epOK := c.creds.Endpoint()
	key, keyOK := c.creds.APIKey()
	return endpoint, key, epOK && keyOK
}

func functionURL(endpoint string) string {
	return strings.TrimRight(endpoint, "/") + FunctionPath
}

// =============================================================================
// QUERY
// =============================================================================

// Query asks question in the scope of project. A nil history sends no
// chat_history; callers normally pass session.HistoryForAPI of the current
// conversation. The request is made exactly once.
func (c *Client) Query(ctx context.Context, question string, project model.ProjectContext, history []model.Message) (*Result, error) {
	endpoint, key, ok := c.credentials()
	if !ok {
		return nil, ErrNotConfigured
	}

	body, err := BuildRequest(question, project, history)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, functionURL(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, key)

	c.logRequest(req, key)
	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// SECURITY: Clear credentials from the request once sent
	req.Header.Del("Authorization")
	req.Header.Del("apikey")

	if err != nil {
		c.logger.Printf("query failed after %v: %v", time.Since(start).Round(time.Millisecond), err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: ParseErrorMessage(readErrorBody(resp)),
		}
	}

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	return ParseResponse(data)
}

// setHeaders attaches the key both ways; the service accepts either.
func setHeaders(req *http.Request, key string) {
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("apikey", key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "buildscope")
}

// readResponse reads the body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

// readErrorBody reads at most MaxErrorBodySize bytes of a non-success body.
// A failed or short read keeps whatever arrived.
func readErrorBody(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
	return string(body)
}

// =============================================================================
// LOGGING (without sensitive data)
// =============================================================================

// logRequest logs method and path. Headers and bodies are never logged; the
// key appears only as a fingerprint.
func (c *Client) logRequest(req *http.Request, key string) {
	c.logger.Printf("query request: %s %s (key %s)", req.Method, req.URL.Path, config.KeyFingerprint(key))
}

func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	c.logger.Printf("query response: %d (%v)", resp.StatusCode, duration.Round(time.Millisecond))
}
