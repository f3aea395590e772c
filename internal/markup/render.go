// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// bulletGlyph prefixes bullet lines in terminal output.
const bulletGlyph = "  • "

// Styles holds the lipgloss styles used by Render.
type Styles struct {
	Header [3]lipgloss.Style // indexed by level-1
	Bold   lipgloss.Style
	Normal lipgloss.Style
	Bullet lipgloss.Style
}

// DefaultStyles returns adaptive styles that work on light and dark
// terminals.
func DefaultStyles() Styles {
	cyan := lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	purple := lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	text := lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

	return Styles{
		Header: [3]lipgloss.Style{
			lipgloss.NewStyle().Bold(true).Underline(true).Foreground(cyan),
			lipgloss.NewStyle().Bold(true).Foreground(cyan),
			lipgloss.NewStyle().Bold(true).Foreground(purple),
		},
		Bold:   lipgloss.NewStyle().Bold(true).Foreground(text),
		Normal: lipgloss.NewStyle().Foreground(text),
		Bullet: lipgloss.NewStyle().Foreground(purple),
	}
}

// RenderOptions controls terminal rendering.
type RenderOptions struct {
	// Width wraps lines to this many columns. Zero disables wrapping.
	Width int
	// Styles overrides DefaultStyles when non-nil.
	Styles *Styles
}

// Render formats parsed lines for a terminal using lipgloss. Each Line
// produces one logical output line; long lines wrap with a hanging indent
// for bullets.
func Render(lines []Line, opts RenderOptions) string {
	st := DefaultStyles()
	if opts.Styles != nil {
		st = *opts.Styles
	}

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, renderLine(l, st, opts.Width))
	}
	return strings.Join(out, "\n")
}

func renderLine(l Line, st Styles, width int) string {
	var body strings.Builder
	for _, seg := range l.Segments {
		switch {
		case l.Type == LineHeader:
			body.WriteString(seg.Text)
		case seg.Type == SegmentBold:
			body.WriteString(st.Bold.Render(seg.Text))
		default:
			body.WriteString(st.Normal.Render(seg.Text))
		}
	}
	text := body.String()

	switch l.Type {
	case LineHeader:
		level := l.HeaderLevel
		if level < 1 || level > 3 {
			level = 1
		}
		return wrap(st.Header[level-1].Render(text), width)
	case LineBullet:
		prefix := st.Bullet.Render(bulletGlyph)
		if width <= 0 {
			return prefix + text
		}
		inner := width - lipgloss.Width(prefix)
		if inner < 10 {
			inner = 10
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, prefix, wrap(text, inner))
	default:
		return wrap(text, width)
	}
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// RenderPlain formats lines without any escape sequences, for piped output.
// Headers keep their "#" markers and bold spans lose their delimiters.
func RenderPlain(lines []Line) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		switch l.Type {
		case LineHeader:
			out = append(out, strings.Repeat("#", l.HeaderLevel)+" "+l.Text())
		case LineBullet:
			out = append(out, "- "+l.Text())
		default:
			out = append(out, l.Text())
		}
	}
	return strings.Join(out, "\n")
}

// RenderRich renders the raw answer text with glamour's full markdown
// support. Use it when the answer may contain constructs the line parser
// does not know about (tables, code fences).
func RenderRich(text string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
