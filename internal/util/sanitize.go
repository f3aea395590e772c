// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// invalidFileNameChars is the union of characters that are illegal in a file
// name on Windows, macOS or Linux. Control characters are handled separately.
const invalidFileNameChars = `<>:"/\|?*`

// SanitizeFileName replaces every character that is illegal in a file name
// with an underscore. The name is NFC-normalised first so that the composed
// and decomposed spellings of the same text map to the same file.
//
// The result may still be "", "." or ".."; callers that join it onto a
// directory must check containment themselves.
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(invalidFileNameChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
