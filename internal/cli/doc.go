// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the buildscope commands.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Global flags plus the raw arguments after the command word
//   - ArgParser: Flag and positional parsing shared by subcommands
//   - App: The wired components (settings, credentials, projects,
//     sessions, query client) a command runs against
//   - JSONResponse: The envelope for --json output
//
// # Usage
//
//	cmd, args := cli.Parse(os.Args[1:])
//	app, err := cli.Setup(args)
//	if err != nil { ... }
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(ctx, app, args)
//	case cli.CmdChat:
//	    err = cli.HandleChat(ctx, app, args)
//	// ... other commands
//	}
//	cli.DisplayError(os.Stderr, err, args.JSON)
//	os.Exit(cli.ExitCode(err))
//
// # Commands Overview
//
//   - ask: Single question about the current project
//   - chat: Interactive session with per-project conversations
//   - project: Create, list, show, delete and select project contexts
//   - config: Show and set credentials and settings
//
// All commands support --json.
package cli
