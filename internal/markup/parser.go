// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"regexp"
	"strings"
	"unicode"
)

// SegmentType distinguishes plain text from emphasised text.
type SegmentType int

const (
	SegmentNormal SegmentType = iota
	SegmentBold
)

// String returns the segment type name.
func (t SegmentType) String() string {
	if t == SegmentBold {
		return "bold"
	}
	return "normal"
}

// LineType is the block kind of a line.
type LineType int

const (
	LineParagraph LineType = iota
	LineBullet
	LineHeader
)

// String returns the line type name.
func (t LineType) String() string {
	switch t {
	case LineBullet:
		return "bullet"
	case LineHeader:
		return "header"
	default:
		return "paragraph"
	}
}

// Segment is a run of text with a single style.
type Segment struct {
	Text string
	Type SegmentType
}

// Line is one rendered line. HeaderLevel is 1-3 for headers and 0 otherwise.
type Line struct {
	Type        LineType
	HeaderLevel int
	Segments    []Segment
}

// Text returns the line's text with markup removed.
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// boldPattern matches **...** non-greedily; RE2's "." never crosses a
// newline, and Parse only feeds it single lines.
var boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)

// blockPrefixes is checked in order: "### " must win over "# ".
var blockPrefixes = []struct {
	prefix string
	typ    LineType
	level  int
}{
	{"### ", LineHeader, 3},
	{"## ", LineHeader, 2},
	{"# ", LineHeader, 1},
	{"- ", LineBullet, 0},
	{"* ", LineBullet, 0},
}

// Parse splits text on newlines and classifies each line. Lines that are
// empty after trimming trailing whitespace are dropped.
func Parse(text string) []Line {
	if text == "" {
		return []Line{}
	}

	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))

	for _, r := range raw {
		trimmed := strings.TrimRightFunc(r, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		lines = append(lines, parseLine(trimmed))
	}

	return lines
}

func parseLine(s string) Line {
	for _, p := range blockPrefixes {
		if strings.HasPrefix(s, p.prefix) {
			return Line{
				Type:        p.typ,
				HeaderLevel: p.level,
				Segments:    ParseInline(s[len(p.prefix):]),
			}
		}
	}
	return Line{Type: LineParagraph, Segments: ParseInline(s)}
}

// ParseInline splits text into Normal and Bold segments. Bold delimiters are
// removed; all other characters, including whitespace, are preserved in order.
func ParseInline(text string) []Segment {
	segments := make([]Segment, 0, 1)
	pos := 0

	for _, m := range boldPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		innerStart, innerEnd := m[2], m[3]

		if start > pos {
			segments = append(segments, Segment{Text: text[pos:start], Type: SegmentNormal})
		}
		segments = append(segments, Segment{Text: text[innerStart:innerEnd], Type: SegmentBold})
		pos = end
	}

	if pos < len(text) {
		segments = append(segments, Segment{Text: text[pos:], Type: SegmentNormal})
	}

	return segments
}
