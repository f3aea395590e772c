// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/buildscope/buildscope/internal/markup"
	"github.com/buildscope/buildscope/internal/model"
	"github.com/buildscope/buildscope/internal/query"
	"github.com/buildscope/buildscope/internal/session"
)

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("question is empty")

// Querier sends one question. *query.Client implements it.
type Querier interface {
	Query(ctx context.Context, question string, project model.ProjectContext, history []model.Message) (*query.Result, error)
}

// AskOptions tunes a single turn.
type AskOptions struct {
	// NoHistory sends the question without chat_history and leaves the
	// session untouched.
	NoHistory bool
}

// Turn is the outcome of a successful Ask.
type Turn struct {
	Project  model.ProjectContext
	Question model.Message
	Answer   model.Message
	// Lines is the parsed answer text.
	Lines []markup.Line
	// Session is the project's conversation after the exchange was
	// appended and capped.
	Session []model.Message
	Elapsed time.Duration
}

// Assistant wires the session store to the query client.
type Assistant struct {
	sessions *session.Store
	client   Querier
	logger   *log.Logger
}

// New creates an assistant. Logs are discarded until WithLogger is called.
func New(sessions *session.Store, client Querier) *Assistant {
	return &Assistant{
		sessions: sessions,
		client:   client,
		logger:   log.New(io.Discard, "", 0),
	}
}

// WithLogger sets the turn logger.
func (a *Assistant) WithLogger(l *log.Logger) *Assistant {
	if l != nil {
		a.logger = l
	}
	return a
}

// Sessions returns the underlying session store.
func (a *Assistant) Sessions() *session.Store {
	return a.sessions
}

// Ask sends question in the scope of project and records the exchange.
func (a *Assistant) Ask(ctx context.Context, project model.ProjectContext, question string, opts AskOptions) (*Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	var history []model.Message
	if !opts.NoHistory {
		history = session.HistoryForAPI(a.sessions.Load(project.Name))
	}

	userMsg := model.NewUserMessage(question)
	start := time.Now()

	res, err := a.client.Query(ctx, question, project, history)
	if err != nil {
		a.logger.Printf("turn for %q failed: %v", project.Name, err)
		return nil, fmt.Errorf("ask failed: %w", err)
	}

	answer := model.NewAssistantMessage(res.Answer, res.References)
	turn := &Turn{
		Project:  project,
		Question: userMsg,
		Answer:   answer,
		Lines:    markup.Parse(res.Answer),
		Elapsed:  time.Since(start),
	}

	if opts.NoHistory {
		turn.Session = []model.Message{userMsg.Clone(), answer.Clone()}
	} else {
		turn.Session = a.sessions.Append(project.Name, userMsg, answer)
	}

	a.logger.Printf("turn for %q: %d history messages, %d references, %v",
		project.Name, len(history), len(answer.References), turn.Elapsed.Round(time.Millisecond))
	return turn, nil
}

// Welcome returns the greeting shown when a conversation opens.
func Welcome(project *model.ProjectContext) model.Message {
	if project == nil {
		return model.NewWelcomeMessage("Ask a question about the building code. Select a project first with /project NAME.")
	}
	return model.NewWelcomeMessage(fmt.Sprintf(
		"Ask a question about the building code for **%s** (%s, Class %s, %s).",
		project.Name, project.State, project.BuildingClass, project.ConstructionType))
}
