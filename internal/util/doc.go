// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the buildscope packages.
//
// # Key Functions
//
// File Operations:
//   - WriteFileAtomic: crash-safe write (temp file, fsync, rename)
//   - SanitizeFileName: map an arbitrary display name to a safe file name
//
// Display:
//   - TruncateWidth: cut to a display width with ellipsis
//   - PadRight: pad to a display width (CJK-aware)
//   - FitWidth: truncate then pad, for table columns
//
// # Usage
//
//	name := util.SanitizeFileName(project.Name) + ".json"
//	err := util.WriteFileAtomic(filepath.Join(dir, name), data, 0644)
package util
