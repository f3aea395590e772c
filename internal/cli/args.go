// args.go - Shared argument parsing for buildscope subcommands.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits subcommand arguments into flags and positionals.
// It handles:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: everything else, in order
//
// A flag followed by a non-flag argument takes it as its value unless the
// flag was declared boolean with NewArgParser. "--" ends flag parsing.
type ArgParser struct {
	flags      map[string]string // --key value / --key=value
	boolFlags  map[string]bool   // --confirm
	positional []string          // Positional arguments, subcommand first
	raw        []string
}

// NewArgParser parses raw. Names listed in boolNames never consume the
// following argument, so "ask --no-history what is D2.6" keeps the
// question intact.
//
// Example:
//
//	p := NewArgParser([]string{"create", "Tower", "--class", "2", "--state=NSW"})
//	p.Subcommand()     // "create"
//	p.Positional(1)    // "Tower"
//	p.Flag("class")    // "2"
//	p.Flag("state")    // "NSW"
func NewArgParser(raw []string, boolNames ...string) *ArgParser {
	declared := make(map[string]bool, len(boolNames))
	for _, n := range boolNames {
		declared[strings.TrimLeft(n, "-")] = true
	}

	p := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0, len(raw)),
		raw:        raw,
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			p.positional = append(p.positional, raw[i+1:]...)
			break
		}
		if !isFlag(arg) {
			p.positional = append(p.positional, arg)
			continue
		}

		// --flag=value
		if name, value, ok := strings.Cut(arg, "="); ok {
			name = strings.TrimLeft(name, "-")
			if declared[name] {
				b, err := ParseBoolString(value)
				p.boolFlags[name] = err == nil && b
			} else {
				p.flags[name] = value
			}
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if !declared[name] && i+1 < len(raw) && !isFlag(raw[i+1]) {
			p.flags[name] = raw[i+1]
			i++
			continue
		}
		p.boolFlags[name] = true
	}

	return p
}

// isFlag reports whether arg looks like a flag. A lone "-" is positional.
func isFlag(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	return p.Positional(0)
}

// Flag returns the value of a string flag, or "" when absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[strings.TrimLeft(name, "-")]
}

// FlagOrDefault returns the flag value or defaultValue when absent or empty.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// FlagInt returns the flag value as an integer.
func (p *ArgParser) FlagInt(name string) (int, error) {
	val := p.Flag(name)
	if val == "" {
		return 0, fmt.Errorf("flag --%s requires a value", strings.TrimLeft(name, "-"))
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("flag --%s must be an integer: %w", strings.TrimLeft(name, "-"), err)
	}
	return n, nil
}

// BoolFlag reports whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[strings.TrimLeft(name, "-")]
}

// Positional returns the positional argument at index, or "".
// Index 0 is the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns the positional arguments starting at index.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// HasFlag reports whether the flag was given in either form.
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// Raw returns the original arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}

// =============================================================================
// HELPERS
// =============================================================================

// ParseBoolString parses a boolean from various string representations.
// Accepts: true/false, yes/no, y/n, 1/0, on/off (case-insensitive)
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", s)
	}
}

// JoinPositionalArgs joins positional arguments from startIndex with single
// spaces. Used for multi-word questions and project names.
func JoinPositionalArgs(parser *ArgParser, startIndex int) string {
	return strings.Join(parser.PositionalFrom(startIndex), " ")
}
