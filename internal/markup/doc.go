// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup turns answer text into typed display lines.
//
// The query service answers in a small markdown subset: "# ", "## " and
// "### " headers, "- " or "* " bullets, plain paragraphs, and **bold** spans
// inside any of them. Parse is a pure function of its input; everything the
// display needs (line kind, header level, ordered segments) is in the result.
//
// # Key Types
//
//   - Line: one non-blank input line with its LineType and Segments
//   - Segment: a run of Normal or Bold text
//
// # Usage
//
//	lines := markup.Parse(answer)
//	fmt.Print(markup.Render(lines, markup.RenderOptions{Width: 80}))
//
// RenderRich hands the raw text to glamour instead, for terminals where full
// markdown styling is wanted.
package markup
