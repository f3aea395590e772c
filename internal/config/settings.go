// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/buildscope/buildscope/internal/util"
)

// =============================================================================
// SETTINGS STRUCTURES
// =============================================================================

// Settings holds client preferences.
type Settings struct {
	// ProjectsDir is where project context files live.
	ProjectsDir string `toml:"projects_dir"`
	// CurrentProject is the project selected with "project use".
	CurrentProject string `toml:"current_project"`

	UI    UISettings    `toml:"ui"`
	Query QuerySettings `toml:"query"`
}

// UISettings controls answer display.
type UISettings struct {
	// WordWrap is the wrap column for rendered answers (0 = no wrap).
	WordWrap int `toml:"word_wrap"`
	// Rich renders answers with full markdown styling.
	Rich bool `toml:"rich"`
}

// QuerySettings controls the query client.
type QuerySettings struct {
	// TimeoutSecs bounds a single request.
	TimeoutSecs int `toml:"timeout_secs"`
	// MinIntervalMs is the minimum spacing between requests (0 = unlimited).
	MinIntervalMs int `toml:"min_interval_ms"`
}

const (
	DefaultWordWrap      = 80
	DefaultTimeoutSecs   = 120
	DefaultMinIntervalMs = 1000

	maxTimeoutSecs = 600
)

// DefaultSettings returns settings with built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		ProjectsDir: defaultProjectsDir(),
		UI: UISettings{
			WordWrap: DefaultWordWrap,
		},
		Query: QuerySettings{
			TimeoutSecs:   DefaultTimeoutSecs,
			MinIntervalMs: DefaultMinIntervalMs,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.Query.TimeoutSecs) * time.Second
}

// MinInterval returns the minimum request spacing as a duration.
func (s *Settings) MinInterval() time.Duration {
	return time.Duration(s.Query.MinIntervalMs) * time.Millisecond
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the buildscope settings directory (~/.buildscope).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".buildscope"), nil
}

// SettingsPath returns the settings file path. When the home directory
// cannot be determined it falls back to the working directory.
func SettingsPath() string {
	dir, err := Dir()
	if err != nil {
		return "settings.toml"
	}
	return filepath.Join(dir, "settings.toml")
}

func defaultProjectsDir() string {
	dir, err := Dir()
	if err != nil {
		return "projects"
	}
	return filepath.Join(dir, "projects")
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// LoadSettings reads settings from path. A missing file yields defaults.
// Environment overrides are applied last, then the result is validated.
// When the file cannot be decoded the defaults (with env overrides) are
// returned along with the error.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	var loadErr error
	if _, err := toml.DecodeFile(path, s); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			loadErr = fmt.Errorf("failed to decode settings file: %w", err)
			s = DefaultSettings()
		}
	}

	s.fillDefaults()
	s.ApplyEnvOverrides()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, loadErr
}

// SaveSettings writes settings to path atomically with 0600 permissions.
func SaveSettings(s *Settings, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# buildscope settings")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := util.WriteFileAtomic(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values that have no meaning of their own.
func (s *Settings) fillDefaults() {
	d := DefaultSettings()
	if s.ProjectsDir == "" {
		s.ProjectsDir = d.ProjectsDir
	}
	if s.Query.TimeoutSecs == 0 {
		s.Query.TimeoutSecs = d.Query.TimeoutSecs
	}
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - BUILDSCOPE_PROJECTS_DIR: overrides projects_dir
//   - BUILDSCOPE_RICH: overrides ui.rich ("1"/"true")
//   - BUILDSCOPE_WORD_WRAP: overrides ui.word_wrap
func (s *Settings) ApplyEnvOverrides() {
	if dir := os.Getenv("BUILDSCOPE_PROJECTS_DIR"); dir != "" {
		s.ProjectsDir = dir
	}

	if rich := os.Getenv("BUILDSCOPE_RICH"); rich != "" {
		s.UI.Rich = rich == "1" || strings.EqualFold(rich, "true")
	}

	if wrap := os.Getenv("BUILDSCOPE_WORD_WRAP"); wrap != "" {
		if n, err := strconv.Atoi(wrap); err == nil {
			s.UI.WordWrap = n
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns all problems at once.
func (s *Settings) Validate() error {
	var errs ValidateErrors

	if s.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: fmt.Sprintf("must be 0 or positive, got %d", s.UI.WordWrap),
		})
	} else if s.UI.WordWrap > 0 && s.UI.WordWrap < 20 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: fmt.Sprintf("must be 0 (disabled) or at least 20, got %d", s.UI.WordWrap),
		})
	}

	if s.Query.TimeoutSecs < 1 || s.Query.TimeoutSecs > maxTimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "query.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", maxTimeoutSecs, s.Query.TimeoutSecs),
		})
	}

	if s.Query.MinIntervalMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "query.min_interval_ms",
			Message: fmt.Sprintf("must be 0 or positive, got %d", s.Query.MinIntervalMs),
		})
	}

	if strings.ContainsRune(s.ProjectsDir, 0) {
		errs = append(errs, ValidationError{
			Field:   "projects_dir",
			Message: "contains a NUL byte",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
