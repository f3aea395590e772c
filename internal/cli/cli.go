// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command dispatch and global flag handling for buildscope.
package cli

import (
	"fmt"
	"io"
	"strings"
)

// Version information (set at build time via -ldflags).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents a CLI command.
type Command int

const (
	// CmdHelp shows usage.
	CmdHelp Command = iota
	// CmdAsk sends a single question.
	CmdAsk
	// CmdChat starts the interactive REPL.
	CmdChat
	// CmdProject manages project contexts.
	CmdProject
	// CmdConfig shows or changes credentials and settings.
	CmdConfig
	// CmdVersion prints version information.
	CmdVersion
	// CmdUnknown is an unrecognized command word.
	CmdUnknown
)

// String returns the command word.
func (c Command) String() string {
	switch c {
	case CmdHelp:
		return "help"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdProject:
		return "project"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "unknown"
	}
}

// Args holds parsed command-line arguments.
type Args struct {
	// Global flags
	Verbose bool
	Quiet   bool
	JSON    bool
	// Project overrides the current project for this invocation.
	Project string

	// Name is the command word as typed (for error messages).
	Name string
	// Raw holds the arguments after the command word, global flags removed.
	Raw []string
}

const usageText = `buildscope - building code answers in your terminal

Usage:
  buildscope [global flags] <command> [arguments]

Commands:
  ask QUESTION              Ask a single question
      --no-history          Send without the conversation so far
      --rich                Render the answer with full markdown styling
  chat                      Start an interactive session
  project create NAME --class CLASS --state STATE --type TYPE
  project list              List saved projects
  project show NAME         Show a project
  project delete NAME --confirm
  project use NAME          Make NAME the current project
  config show               Show where credentials come from
  config set [--url URL] [--key KEY] [--wrap N] [--rich BOOL]
  config path               Print the credentials and settings paths
  version                   Show version information
  help                      Show this help

Global Flags:
  -p, --project NAME        Use NAME instead of the current project
  --json                    Machine-readable output
  -q, --quiet               Minimal output
  -v, --verbose             Log requests to stderr (also BUILDSCOPE_DEBUG=1)

Credentials:
  BUILDSCOPE_SUPABASE_URL and BUILDSCOPE_API_KEY override config.json,
  which lives next to the buildscope executable.

Examples:
  buildscope project create "Harbour Tower" --class 2 --state NSW --type A
  buildscope project use "Harbour Tower"
  buildscope ask "What are the fire separation requirements?"
  buildscope --project Warehouse ask --rich "Exit travel distances?"

Version: %s
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "buildscope version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments (without the program name) and
// returns the command and its args.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdHelp, args
	}

	args.Name = remaining[0]
	args.Raw = remaining[1:]

	switch strings.ToLower(remaining[0]) {
	case "ask", "a":
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "project", "projects", "p":
		return CmdProject, args
	case "config":
		return CmdConfig, args
	case "version", "--version":
		return CmdVersion, args
	case "help", "-h", "--help":
		return CmdHelp, args
	default:
		return CmdUnknown, args
	}
}

// parseGlobalFlags extracts global flags that may appear anywhere on the
// command line and returns the remaining args in order.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	remaining := make([]string, 0, len(argv))

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		if arg == "--" {
			remaining = append(remaining, argv[i:]...)
			break
		}

		switch arg {
		case "-v", "--verbose":
			args.Verbose = true
		case "-q", "--quiet":
			args.Quiet = true
		case "--json":
			args.JSON = true
		case "-p", "--project":
			if i+1 < len(argv) {
				i++
				args.Project = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--project=") {
				args.Project = strings.TrimPrefix(arg, "--project=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, args
}
