// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/buildscope/buildscope/internal/util"
)

// =============================================================================
// PROJECT EVENTS
// =============================================================================

// ProjectEventType is the kind of change observed on a project file.
type ProjectEventType int

const (
	ProjectWritten ProjectEventType = iota
	ProjectRemoved
)

// String returns the event type name.
func (t ProjectEventType) String() string {
	if t == ProjectRemoved {
		return "removed"
	}
	return "written"
}

// ProjectEvent describes one change in the projects directory.
type ProjectEvent struct {
	Type ProjectEventType
	// Name is the project name from the file when it could be read,
	// otherwise the file stem.
	Name string
	Path string
}

// =============================================================================
// WATCH
// =============================================================================

// Watch reports changes to project files until ctx is cancelled. fn runs on
// the watcher goroutine. If the current project's file is removed the
// current selection is cleared before fn is called.
//
// Watch returns once the watcher is installed; only setup errors are
// returned.
func (s *ProjectStore) Watch(ctx context.Context, fn func(ProjectEvent)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	go s.processEvents(ctx, w, fn)
	return nil
}

func (s *ProjectStore) processEvents(ctx context.Context, w *fsnotify.Watcher, fn func(ProjectEvent)) {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, projectExt) {
				continue
			}
			if ev, ok := s.translate(event); ok && fn != nil {
				fn(ev)
			}

		case _, ok := <-w.Errors:
			if !ok {
				return
			}
			// Non-fatal: the next event may still arrive.
		}
	}
}

// translate maps a raw fsnotify event onto a ProjectEvent.
func (s *ProjectStore) translate(event fsnotify.Event) (ProjectEvent, bool) {
	stem := strings.TrimSuffix(filepath.Base(event.Name), projectExt)

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		s.dropCurrentIfFile(stem)
		return ProjectEvent{Type: ProjectRemoved, Name: stem, Path: event.Name}, true

	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		name := stem
		if res := readProject(event.Name); res.status == parseOK {
			name = res.project.Name
		}
		return ProjectEvent{Type: ProjectWritten, Name: name, Path: event.Name}, true
	}
	return ProjectEvent{}, false
}

// dropCurrentIfFile clears the current project when it maps to stem.
func (s *ProjectStore) dropCurrentIfFile(stem string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && util.SanitizeFileName(s.current.Name) == stem {
		s.current = nil
	}
}
