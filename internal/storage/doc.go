// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists project contexts for buildscope.
//
// Each project is one indented JSON file named after the sanitized project
// name. The store also tracks the in-memory "current" project and can watch
// its directory for changes made by other processes.
//
// # Key Types
//
//   - ProjectStore: create, list, load and delete project files
//   - ProjectEvent: a change observed by Watch
//   - ProjectError: typed error for invalid names
//
// # Usage
//
//	store, err := storage.NewProjectStore(dir)
//	err = store.Create(model.ProjectContext{Name: "Smith House", State: "VIC"})
//	p, ok := store.Load("Smith House")
//
// # Storage Location
//
// Projects are stored in ~/.buildscope/projects/ unless the settings file
// or BUILDSCOPE_PROJECTS_DIR says otherwise.
package storage
