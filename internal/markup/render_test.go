// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAnswer = "## Requirements\nWalls must achieve **R2.8**.\n- Insulation required\n- Vapor barrier per **H4V2**"

func TestRenderPlain(t *testing.T) {
	got := RenderPlain(Parse(sampleAnswer))
	want := "## Requirements\nWalls must achieve R2.8.\n- Insulation required\n- Vapor barrier per H4V2"
	assert.Equal(t, want, got)
}

func TestRenderPlainEmpty(t *testing.T) {
	assert.Equal(t, "", RenderPlain(Parse("")))
}

func TestRenderKeepsContent(t *testing.T) {
	out := Render(Parse(sampleAnswer), RenderOptions{})

	for _, want := range []string{"Requirements", "R2.8", "Insulation required", "H4V2", "•"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "## ")
}

func TestRenderOneOutputLinePerLineWithoutWrap(t *testing.T) {
	lines := Parse(sampleAnswer)
	out := Render(lines, RenderOptions{})
	assert.Len(t, strings.Split(out, "\n"), len(lines))
}

func TestRenderWraps(t *testing.T) {
	long := "- " + strings.Repeat("insulation ", 20)
	out := Render(Parse(long), RenderOptions{Width: 40})

	rows := strings.Split(out, "\n")
	require.Greater(t, len(rows), 1)
	for _, r := range rows {
		assert.LessOrEqual(t, lipgloss.Width(r), 40)
	}
}

func TestRenderCustomStyles(t *testing.T) {
	st := DefaultStyles()
	st.Bullet = lipgloss.NewStyle()
	out := Render(Parse("- item"), RenderOptions{Styles: &st})
	assert.Contains(t, out, "item")
}

func TestRenderRich(t *testing.T) {
	out, err := RenderRich("# Heading\n\nSome **bold** words.", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "bold")
}
