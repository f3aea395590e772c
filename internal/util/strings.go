// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateWidth shortens s to at most width display columns, ending with
// "..." when something was cut. A non-positive width returns s unchanged.
func TruncateWidth(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// PadRight pads s with spaces to the given display width. Wide characters
// count as two columns. Strings already at or past width are returned as is.
func PadRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// FitWidth truncates s to fit the display width, then pads it to exactly
// that width. Used for fixed-column tables.
func FitWidth(s string, width int) string {
	return PadRight(TruncateWidth(s, width), width)
}
