// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session keeps per-project conversation history in memory.
//
// Sessions live for the life of the process. Only user and assistant
// messages are ever stored; welcome and loading placeholders are UI state.
//
// # Key Types
//
//   - Store: project name -> ordered message history
//   - Change: notification delivered to OnChange callbacks
//
// # Limits
//
//   - MessageCap: the most messages a displayed conversation keeps
//   - APIHistoryLimit: the most prior messages sent with a question
//
// # Usage
//
//	store := session.NewStore()
//	msgs := store.Append("Smith House", userMsg, answerMsg)
//	history := session.HistoryForAPI(msgs)
package session
