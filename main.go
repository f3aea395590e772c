// buildscope - building code answers in your terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/buildscope/buildscope/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	cmd, args := cli.Parse(argv)

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		if args.JSON {
			_ = cli.NewJSONResponse("version", cli.VersionData{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
			}).Write(os.Stdout)
		} else {
			cli.PrintVersion(os.Stdout)
		}
		return cli.ExitSuccess
	case cli.CmdUnknown:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args.Name)
		cli.PrintUsage(os.Stderr)
		return cli.ExitUsageError
	}

	app, err := cli.Setup(args)
	if err != nil {
		return fail(err, args)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case cli.CmdAsk:
		err = cli.HandleAsk(ctx, app, args)
	case cli.CmdChat:
		// liner handles Ctrl+C itself while prompting.
		stop()
		err = cli.HandleChat(context.Background(), app, args)
	case cli.CmdProject:
		err = cli.HandleProject(app, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(app, args)
	}
	if err != nil {
		return fail(err, args)
	}
	return cli.ExitSuccess
}

func fail(err error, args cli.Args) int {
	if args.JSON {
		cli.DisplayError(os.Stdout, err, true)
	} else {
		cli.DisplayError(os.Stderr, err, false)
	}
	return cli.ExitCode(err)
}
