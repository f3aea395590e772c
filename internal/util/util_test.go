// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestWriteFileAtomic_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`{"a":1}`), 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(content))
}

func TestWriteFileAtomic_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "test.json")

	require.NoError(t, WriteFileAtomic(path, []byte("x"), 0644))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestWriteFileAtomic_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	require.NoError(t, WriteFileAtomic(path, []byte("initial"), 0644))
	require.NoError(t, WriteFileAtomic(path, []byte("updated"), 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(content))
}

func TestWriteFileAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")

	require.NoError(t, WriteFileAtomic(path, []byte("data"), 0644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "test.json", entries[0].Name())
}

func TestWriteFileAtomic_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	path := filepath.Join(t.TempDir(), "secret.json")

	require.NoError(t, WriteFileAtomic(path, []byte("k"), 0600))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// =============================================================================
// SANITIZE TESTS
// =============================================================================

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "My Building", "My Building"},
		{"slashes", "../../x", ".._.._x"},
		{"backslash", `a\b`, "a_b"},
		{"windows reserved", `a<b>c:d"e|f?g*h`, "a_b_c_d_e_f_g_h"},
		{"control chars", "a\x00b\tc", "a_b_c"},
		{"empty", "", ""},
		{"unicode kept", "Tower Ω", "Tower Ω"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeFileName(tc.in))
		})
	}
}

func TestSanitizeFileName_NormalizesToNFC(t *testing.T) {
	composed := "Caf\u00e9"
	decomposed := "Cafe\u0301"

	assert.Equal(t, SanitizeFileName(composed), SanitizeFileName(decomposed))
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "hello", TruncateWidth("hello", 10))
	assert.Equal(t, "hel...", TruncateWidth("hello world", 6))
	assert.Equal(t, "he", TruncateWidth("hello", 2))
	assert.Equal(t, "hello", TruncateWidth("hello", 0))
	// Each CJK character occupies two columns.
	assert.Equal(t, "日...", TruncateWidth("日本語の名前", 6))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abcdef", PadRight("abcdef", 3))
	// Each CJK character occupies two columns.
	assert.Equal(t, "日本 ", PadRight("日本", 5))
}

func TestFitWidth(t *testing.T) {
	assert.Equal(t, "abc  ", FitWidth("abc", 5))
	got := FitWidth("a very long project name", 10)
	assert.Len(t, got, 10)
	assert.Contains(t, got, "...")
}
