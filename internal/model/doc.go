// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the buildscope
// packages: conversation messages, answer references and project contexts.
//
// # Key Types
//
//   - Message: one entry in a conversation (user question, assistant answer,
//     or a UI-only welcome/loading placeholder)
//   - Role: message role enumeration
//   - Reference: a code citation attached to an assistant answer
//   - ProjectContext: the building attributes that scope a conversation
//
// Only RoleUser and RoleAssistant messages are conversational. The other
// roles exist so the UI can keep placeholders in the same list; they are never
// persisted and never sent to the query service.
//
// # Usage
//
//	msgs := []model.Message{model.NewWelcomeMessage("Ask about the NCC")}
//	msgs = append(msgs, model.NewUserMessage("What are the egress requirements?"))
package model
