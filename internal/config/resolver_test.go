// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv makes sure the developer's own credentials never leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvAPIKey, "")
}

func writeCredentials(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, CredentialsFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const fileCredentials = `{"supabaseUrl": "https://file.supabase.co", "apiKey": "file-key"}`

func TestResolver_ReadsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEndpoint, "https://test.supabase.co")
	t.Setenv(EnvAPIKey, "test-key-123")

	r := NewResolver(filepath.Join(t.TempDir(), "missing.json"))

	ep, ok := r.Endpoint()
	assert.True(t, ok)
	assert.Equal(t, "https://test.supabase.co", ep)

	key, ok := r.APIKey()
	assert.True(t, ok)
	assert.Equal(t, "test-key-123", key)
}

func TestResolver_FallsBackToFile(t *testing.T) {
	clearEnv(t)
	r := NewResolver(writeCredentials(t, t.TempDir(), fileCredentials))

	ep, ok := r.Endpoint()
	assert.True(t, ok)
	assert.Equal(t, "https://file.supabase.co", ep)

	key, ok := r.APIKey()
	assert.True(t, ok)
	assert.Equal(t, "file-key", key)

	creds := r.Resolve()
	assert.Equal(t, SourceFile, creds.EndpointSource)
	assert.Equal(t, SourceFile, creds.KeySource)
	assert.True(t, creds.Configured())
}

func TestResolver_EnvTakesPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeCredentials(t, t.TempDir(), fileCredentials)
	t.Setenv(EnvEndpoint, "https://env.supabase.co")
	t.Setenv(EnvAPIKey, "env-key")

	r := NewResolver(path)
	creds := r.Resolve()
	assert.Equal(t, "https://env.supabase.co", creds.Endpoint)
	assert.Equal(t, "env-key", creds.APIKey)
	assert.Equal(t, SourceEnv, creds.EndpointSource)
	assert.Equal(t, SourceEnv, creds.KeySource)
}

func TestResolver_FieldsResolveIndependently(t *testing.T) {
	clearEnv(t)
	path := writeCredentials(t, t.TempDir(), fileCredentials)
	t.Setenv(EnvAPIKey, "env-key")

	creds := NewResolver(path).Resolve()
	assert.Equal(t, "https://file.supabase.co", creds.Endpoint)
	assert.Equal(t, SourceFile, creds.EndpointSource)
	assert.Equal(t, "env-key", creds.APIKey)
	assert.Equal(t, SourceEnv, creds.KeySource)
}

func TestResolver_AbsentWhenNotConfigured(t *testing.T) {
	clearEnv(t)
	r := NewResolver(filepath.Join(t.TempDir(), "nonexistent.json"))

	ep, ok := r.Endpoint()
	assert.False(t, ok)
	assert.Empty(t, ep)
	assert.False(t, r.Configured())
	assert.NoError(t, r.FileError())
	assert.Equal(t, SourceNone, r.Resolve().EndpointSource)
}

func TestResolver_CorruptFileIsAbsent(t *testing.T) {
	clearEnv(t)
	for _, content := range []string{"{not json", "[1, 2]", `{"apiKey": 42}`} {
		r := NewResolver(writeCredentials(t, t.TempDir(), content))

		_, ok := r.Endpoint()
		assert.False(t, ok, "content %q", content)
		_, ok = r.APIKey()
		assert.False(t, ok, "content %q", content)
		assert.Error(t, r.FileError(), "content %q", content)
	}
}

func TestResolver_PartialFile(t *testing.T) {
	clearEnv(t)
	r := NewResolver(writeCredentials(t, t.TempDir(), `{"supabaseUrl": "https://only-url.supabase.co"}`))

	_, ok := r.Endpoint()
	assert.True(t, ok)
	_, ok = r.APIKey()
	assert.False(t, ok)
	assert.False(t, r.Configured())
}

func TestResolver_CachesResolvedValues(t *testing.T) {
	clearEnv(t)
	path := writeCredentials(t, t.TempDir(), fileCredentials)
	r := NewResolver(path)

	first, _ := r.Endpoint()
	require.NoError(t, os.Remove(path))
	t.Setenv(EnvEndpoint, "https://later.supabase.co")

	second, _ := r.Endpoint()
	assert.Equal(t, first, second)
}

func TestResolver_SaveWritesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", CredentialsFileName)
	r := NewResolver(path)

	require.NoError(t, r.Save("https://saved.supabase.co", "saved-key"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "https://saved.supabase.co", got["supabaseUrl"])
	assert.Equal(t, "saved-key", got["apiKey"])

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestResolver_SaveUpdatesCache(t *testing.T) {
	clearEnv(t)
	r := NewResolver(writeCredentials(t, t.TempDir(), fileCredentials))
	_, _ = r.Endpoint()

	require.NoError(t, r.Save("https://cached.supabase.co", "cached-key"))

	creds := r.Resolve()
	assert.Equal(t, "https://cached.supabase.co", creds.Endpoint)
	assert.Equal(t, "cached-key", creds.APIKey)
	assert.Equal(t, SourceSaved, creds.EndpointSource)
}

func TestResolver_SaveEmptyValueClearsFileValue(t *testing.T) {
	clearEnv(t)
	r := NewResolver(writeCredentials(t, t.TempDir(), fileCredentials))
	ep, ok := r.Endpoint()
	require.True(t, ok)
	require.Equal(t, "https://file.supabase.co", ep)

	require.NoError(t, r.Save("", "new-key"))

	ep, ok = r.Endpoint()
	assert.False(t, ok)
	assert.Empty(t, ep)

	creds := r.Resolve()
	assert.Equal(t, SourceNone, creds.EndpointSource)
	assert.Equal(t, "new-key", creds.APIKey)
	assert.False(t, creds.Configured())
}

func TestResolver_SaveReplacesCorruptFile(t *testing.T) {
	clearEnv(t)
	r := NewResolver(writeCredentials(t, t.TempDir(), `{not json`))
	require.Error(t, r.FileError())

	require.NoError(t, r.Save("https://fixed.supabase.co", "fixed-key"))

	assert.NoError(t, r.FileError())
	assert.True(t, r.Configured())
}

func TestResolver_SaveRoundTripsThroughNewResolver(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), CredentialsFileName)
	require.NoError(t, NewResolver(path).Save("https://rt.supabase.co", "rt-key"))

	creds := NewResolver(path).Resolve()
	assert.Equal(t, "https://rt.supabase.co", creds.Endpoint)
	assert.Equal(t, "rt-key", creds.APIKey)
}

func TestResolver_SaveErrorPropagates(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	// Parent "directory" is a regular file.
	r := NewResolver(filepath.Join(blocker, CredentialsFileName))
	assert.Error(t, r.Save("https://x.supabase.co", "k"))
}

func TestResolver_ConcurrentAccess(t *testing.T) {
	clearEnv(t)
	r := NewResolver(writeCredentials(t, t.TempDir(), fileCredentials))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ep, ok := r.Endpoint(); !ok || ep == "" {
				t.Error("endpoint not resolved")
			}
			_ = r.Resolve()
		}()
	}
	wg.Wait()
}

func TestDefaultCredentialsPath(t *testing.T) {
	p := DefaultCredentialsPath()
	assert.Equal(t, CredentialsFileName, filepath.Base(p))
}

func TestKeyFingerprint(t *testing.T) {
	assert.Equal(t, "(not set)", KeyFingerprint(""))

	fp := KeyFingerprint("secret-api-key-value")
	assert.True(t, strings.HasPrefix(fp, "sha256:"))
	assert.NotContains(t, fp, "secret")
	assert.Equal(t, fp, KeyFingerprint("secret-api-key-value"))
	assert.NotEqual(t, fp, KeyFingerprint("another-key"))
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "environment", SourceEnv.String())
	assert.Equal(t, "config file", SourceFile.String())
	assert.Equal(t, "saved", SourceSaved.String())
	assert.Equal(t, "not set", SourceNone.String())
}
