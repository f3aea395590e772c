// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant runs one conversation turn.
//
// A turn loads the project's session, sends the question with the recent
// history window, parses the answer's markup and appends the exchange to
// the session. Failed turns leave the session untouched.
//
// # Usage
//
//	a := assistant.New(sessions, client)
//	turn, err := a.Ask(ctx, project, "What fire rating do the walls need?", assistant.AskOptions{})
//	fmt.Print(markup.Render(turn.Lines, markup.RenderOptions{Width: 80}))
package assistant
