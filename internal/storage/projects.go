// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/buildscope/buildscope/internal/model"
	"github.com/buildscope/buildscope/internal/util"
)

const projectExt = ".json"

// =============================================================================
// PROJECT STORE
// =============================================================================

// ProjectStore handles project persistence. Safe for concurrent use.
type ProjectStore struct {
	// dir is absolute so containment checks compare like with like.
	dir string

	mu      sync.RWMutex
	current *model.ProjectContext
}

// NewProjectStore creates a store rooted at dir, creating the directory if
// needed.
func NewProjectStore(dir string) (*ProjectStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve projects directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create projects directory: %w", err)
	}
	return &ProjectStore{dir: abs}, nil
}

// Dir returns the absolute projects directory.
func (s *ProjectStore) Dir() string {
	return s.dir
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Create writes p to disk, replacing any project with the same sanitized
// name. The name is validated before any file I/O.
func (s *ProjectStore) Create(p model.ProjectContext) error {
	path, err := s.projectPath(p.Name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project %q: %w", p.Name, err)
	}
	return nil
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

type parseStatus int

const (
	parseOK parseStatus = iota
	parseMissing
	parseCorrupt
)

// parseResult is the outcome of reading one project file.
type parseResult struct {
	project model.ProjectContext
	status  parseStatus
	err     error
}

func readProject(path string) parseResult {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return parseResult{status: parseMissing}
		}
		return parseResult{status: parseCorrupt, err: err}
	}

	var p *model.ProjectContext
	if err := json.Unmarshal(data, &p); err != nil {
		return parseResult{status: parseCorrupt, err: err}
	}
	if p == nil {
		return parseResult{status: parseCorrupt, err: errors.New("project file is null")}
	}
	return parseResult{project: *p, status: parseOK}
}

// Load returns the project called name. It reports false for invalid
// names and for missing or unreadable files.
func (s *ProjectStore) Load(name string) (model.ProjectContext, bool) {
	path, err := s.projectPath(name)
	if err != nil {
		return model.ProjectContext{}, false
	}

	res := readProject(path)
	if res.status != parseOK {
		return model.ProjectContext{}, false
	}
	return res.project, true
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns every readable project sorted by name. Corrupt files are
// skipped.
func (s *ProjectStore) List() ([]model.ProjectContext, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.ProjectContext{}, nil
		}
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	projects := make([]model.ProjectContext, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), projectExt) {
			continue
		}

		res := readProject(filepath.Join(s.dir, entry.Name()))
		if res.status != parseOK {
			continue // Skip corrupted files
		}
		projects = append(projects, res.project)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})
	return projects, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes the project file. It reports whether a file was removed.
// When the current project has this name it is cleared.
func (s *ProjectStore) Delete(name string) (bool, error) {
	path, err := s.projectPath(name)
	if err != nil {
		return false, err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete project %q: %w", name, err)
	}

	s.mu.Lock()
	if s.current != nil && s.current.Name == name {
		s.current = nil
	}
	s.mu.Unlock()

	return true, nil
}

// =============================================================================
// CURRENT PROJECT
// =============================================================================

// SetCurrent selects p as the current project. Nil clears the selection.
func (s *ProjectStore) SetCurrent(p *model.ProjectContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		s.current = nil
		return
	}
	cp := *p
	s.current = &cp
}

// Current returns a copy of the current project, or nil.
func (s *ProjectStore) Current() *model.ProjectContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// projectPath maps a project name to its file, rejecting any name whose file
// would not sit directly inside the store directory.
func (s *ProjectStore) projectPath(name string) (string, error) {
	sanitized := util.SanitizeFileName(name)
	if sanitized == "" || sanitized == "." || sanitized == ".." {
		return "", invalidName(name)
	}

	full, err := filepath.Abs(filepath.Join(s.dir, sanitized+projectExt))
	if err != nil {
		return "", invalidName(name)
	}

	rel, err := filepath.Rel(s.dir, full)
	if err != nil || rel == "." || rel == ".." || strings.ContainsRune(rel, filepath.Separator) {
		return "", invalidName(name)
	}
	return full, nil
}

func invalidName(name string) error {
	return &ProjectError{Name: name, Message: ErrInvalidProjectName.Message}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidProjectName is returned when a project name cannot be mapped to
// a file inside the store directory.
// Use errors.Is(err, ErrInvalidProjectName) to check for this error.
var ErrInvalidProjectName = &ProjectError{Message: "invalid project name"}

// ProjectError represents a project-related error.
type ProjectError struct {
	Name    string
	Message string
}

// Error implements the error interface.
func (e *ProjectError) Error() string {
	if e.Name == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %q", e.Message, e.Name)
}

// Is implements errors.Is support for comparing project errors by message.
func (e *ProjectError) Is(target error) bool {
	t, ok := target.(*ProjectError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
