// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - The "buildscope ask" command.
//
// Command: ask
// Short:   Ask a single question about the current project
//
// Examples:
//
//	buildscope ask "What fire rating do the stair shafts need?"
//	buildscope --project Warehouse ask --rich "Maximum travel distance to an exit?"
//	buildscope ask --json "Sprinkler requirements" | jq .data.answer
//
// Flags:
//
//	--no-history    Send without the conversation so far
//	--rich          Full markdown rendering (tables, code blocks)
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/buildscope/buildscope/internal/assistant"
)

// HandleAsk sends the question given on the command line and prints the
// answer with its references.
func HandleAsk(ctx context.Context, app *App, args Args) error {
	p := NewArgParser(args.Raw, "no-history", "rich")

	question := strings.TrimSpace(JoinPositionalArgs(p, 0))
	if question == "" {
		return usageErr("ask", "a question is required",
			`buildscope ask "What are the exit requirements for a Class 5 building?"`)
	}

	project, err := app.project(args.Project)
	if err != nil {
		return err
	}

	turn, err := app.Assistant.Ask(ctx, project, question, assistant.AskOptions{
		NoHistory: p.BoolFlag("no-history"),
	})
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("ask", AskData{
			Project:     project.Name,
			Question:    turn.Question.Content,
			Answer:      turn.Answer.Content,
			References:  turn.Answer.References,
			HistorySize: len(turn.Session),
			ElapsedMs:   turn.Elapsed.Milliseconds(),
		}).Write(app.Out)
	}

	rich := p.BoolFlag("rich") || app.Settings.UI.Rich
	fmt.Fprintln(app.Out, app.renderText(turn.Answer.Content, rich))
	app.writeReferences(turn.Answer.References)

	if !args.Quiet {
		fmt.Fprintln(app.Out)
		fmt.Fprintln(app.Out, DimStyle.Render(fmt.Sprintf("%s · %s",
			project.String(), turn.Elapsed.Round(10*time.Millisecond))))
	}
	return nil
}
