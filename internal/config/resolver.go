// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/buildscope/buildscope/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// EnvEndpoint overrides the service endpoint.
	EnvEndpoint = "BUILDSCOPE_SUPABASE_URL"
	// EnvAPIKey overrides the service API key.
	EnvAPIKey = "BUILDSCOPE_API_KEY"

	// CredentialsFileName is the name of the credentials file.
	CredentialsFileName = "config.json"
)

// Source records where a credential value came from.
type Source int

const (
	SourceNone Source = iota
	SourceEnv
	SourceFile
	SourceSaved
)

// String returns a human-readable source name.
func (s Source) String() string {
	switch s {
	case SourceEnv:
		return "environment"
	case SourceFile:
		return "config file"
	case SourceSaved:
		return "saved"
	default:
		return "not set"
	}
}

// fileState is the outcome of reading the credentials file. It is computed
// once per Resolver.
type fileState int

const (
	fileUnread fileState = iota
	fileOK
	fileMissing
	fileCorrupt
)

// credentialsFile is the on-disk layout of config.json.
type credentialsFile struct {
	SupabaseURL string `json:"supabaseUrl"`
	APIKey      string `json:"apiKey"`
}

type cachedValue struct {
	value  string
	source Source
}

// Credentials is a snapshot of the resolved endpoint and key.
type Credentials struct {
	Endpoint       string
	APIKey         string
	EndpointSource Source
	KeySource      Source
}

// Configured reports whether both values are present.
func (c Credentials) Configured() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver resolves the service credentials. Values are cached once found;
// the credentials file is read at most once. Safe for concurrent use.
type Resolver struct {
	path string

	mu       sync.Mutex
	state    fileState
	file     credentialsFile
	fileErr  error
	endpoint cachedValue
	apiKey   cachedValue
}

// NewResolver creates a resolver backed by the credentials file at path.
func NewResolver(path string) *Resolver {
	return &Resolver{path: path}
}

// DefaultCredentialsPath returns config.json in the running executable's
// directory.
func DefaultCredentialsPath() string {
	exe, err := os.Executable()
	if err != nil {
		return CredentialsFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), CredentialsFileName)
}

// Path returns the credentials file path.
func (r *Resolver) Path() string {
	return r.path
}

// Endpoint returns the service endpoint and whether one is configured.
func (r *Resolver) Endpoint() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.resolve(&r.endpoint, EnvEndpoint, func(f credentialsFile) string { return f.SupabaseURL })
	return v.value, v.value != ""
}

// APIKey returns the service API key and whether one is configured.
func (r *Resolver) APIKey() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.resolve(&r.apiKey, EnvAPIKey, func(f credentialsFile) string { return f.APIKey })
	return v.value, v.value != ""
}

// Resolve returns both credentials with their sources.
func (r *Resolver) Resolve() Credentials {
	r.mu.Lock()
	defer r.mu.Unlock()
	ep := r.resolve(&r.endpoint, EnvEndpoint, func(f credentialsFile) string { return f.SupabaseURL })
	key := r.resolve(&r.apiKey, EnvAPIKey, func(f credentialsFile) string { return f.APIKey })
	return Credentials{
		Endpoint:       ep.value,
		APIKey:         key.value,
		EndpointSource: ep.source,
		KeySource:      key.source,
	}
}

// Configured reports whether both endpoint and key resolve.
func (r *Resolver) Configured() bool {
	return r.Resolve().Configured()
}

// FileError returns the parse error of a corrupt credentials file, or nil.
// A corrupt file never fails resolution; it only makes its values absent.
func (r *Resolver) FileError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadFile()
	return r.fileErr
}

// Save stores both values in the cache and writes them to the credentials
// file with owner-only permissions. The write is atomic.
func (r *Resolver) Save(endpoint, apiKey string) error {
	r.mu.Lock()
	r.endpoint = cachedValue{value: endpoint, source: SourceSaved}
	r.apiKey = cachedValue{value: apiKey, source: SourceSaved}
	r.file = credentialsFile{SupabaseURL: endpoint, APIKey: apiKey}
	r.state = fileOK
	r.fileErr = nil
	r.mu.Unlock()

	data, err := json.MarshalIndent(credentialsFile{SupabaseURL: endpoint, APIKey: apiKey}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	// SECURITY: 0600 = owner read/write only
	if err := util.WriteFileAtomic(r.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// resolve fills slot from env or file when it is still empty. Caller holds mu.
func (r *Resolver) resolve(slot *cachedValue, env string, pick func(credentialsFile) string) cachedValue {
	if slot.value != "" {
		return *slot
	}

	if v := os.Getenv(env); v != "" {
		*slot = cachedValue{value: v, source: SourceEnv}
		return *slot
	}

	r.loadFile()
	if r.state == fileOK {
		if v := pick(r.file); v != "" {
			*slot = cachedValue{value: v, source: SourceFile}
			return *slot
		}
	}
	*slot = cachedValue{}
	return *slot
}

// loadFile reads the credentials file once. Caller holds mu.
func (r *Resolver) loadFile() {
	if r.state != fileUnread {
		return
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.state = fileMissing
			return
		}
		r.state = fileCorrupt
		r.fileErr = fmt.Errorf("failed to read %s: %w", r.path, err)
		return
	}

	var f credentialsFile
	if err := json.Unmarshal(data, &f); err != nil {
		r.state = fileCorrupt
		r.fileErr = fmt.Errorf("failed to parse %s: %w", r.path, err)
		return
	}

	r.file = f
	r.state = fileOK
}

// =============================================================================
// HELPERS
// =============================================================================

// KeyFingerprint returns a short SHA-256 fingerprint of an API key for
// display and logs. The key itself is never shown.
func KeyFingerprint(key string) string {
	if key == "" {
		return "(not set)"
	}
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x...", hash[:4])
}
