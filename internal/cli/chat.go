// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command for buildscope.
//
// Command: chat
// Short:   Start an interactive session
//
// Interactive Commands (during chat):
//
//	/help, /h           Show available commands
//	/clear, /c          Clear the current project's conversation
//	/history            Show the conversation so far
//	/project NAME       Switch project (each project keeps its own conversation)
//	/projects           List projects
//	/quit, /q           Exit chat
//	Ctrl+C, Ctrl+D      Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"

	"github.com/buildscope/buildscope/internal/assistant"
	"github.com/buildscope/buildscope/internal/config"
	"github.com/buildscope/buildscope/internal/model"
	"github.com/buildscope/buildscope/internal/storage"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader reads one line of input. ChatCLI implements it; tests use a
// scripted reader.
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// ChatCLI provides line editing and persistent input history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI whose history lives in historyFile.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// chatHistoryPath returns ~/.buildscope/chat_history, or a temp-dir file.
func chatHistoryPath() string {
	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "chat_history")
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// noticeQueue holds messages from background goroutines until the REPL is
// between prompts, so they never land inside the line being edited.
type noticeQueue struct {
	mu    sync.Mutex
	items []string
}

func (q *noticeQueue) push(msg string) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()
}

// drain returns the queued messages in arrival order and empties the queue.
func (q *noticeQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// chatSession is the REPL state. The current project is always read from
// the ProjectStore so external deletes are picked up.
type chatSession struct {
	app     *App
	input   lineReader
	rich    bool
	asked   int
	notices noticeQueue
}

// HandleChat runs the interactive REPL until /quit, Ctrl+C or Ctrl+D.
func HandleChat(ctx context.Context, app *App, args Args) error {
	if args.JSON {
		return usageErr("chat", "--json is not supported for interactive chat", "buildscope ask --json QUESTION")
	}
	if args.Project != "" {
		p, err := app.project(args.Project)
		if err != nil {
			return err
		}
		app.Projects.SetCurrent(&p)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli := NewChatCLI(chatHistoryPath())
	defer cli.Close()

	s := &chatSession{app: app, input: cli, rich: app.Settings.UI.Rich}
	if err := app.Projects.Watch(ctx, func(ev storage.ProjectEvent) {
		notifyProjectEvent(app, &s.notices, ev)
	}); err != nil {
		app.Logger.Printf("project watcher unavailable: %v", err)
	}
	return s.run(ctx)
}

// notifyProjectEvent keeps the current selection in sync with its file and
// queues a notice for the next prompt. It runs on the watcher goroutine.
func notifyProjectEvent(app *App, notices *noticeQueue, ev storage.ProjectEvent) {
	cur := app.Projects.Current()
	switch ev.Type {
	case storage.ProjectRemoved:
		notices.push(fmt.Sprintf("%s project file removed: %s", WarningStyle.Render("[!]"), filepath.Base(ev.Path)))
	case storage.ProjectWritten:
		if cur != nil && ev.Name == cur.Name {
			if p, ok := app.Projects.Load(ev.Name); ok {
				app.Projects.SetCurrent(&p)
				notices.push(fmt.Sprintf("%s project updated: %s", DimStyle.Render("[i]"), p.String()))
			}
		}
	}
}

// printNotices writes queued watcher notices to stderr.
func (s *chatSession) printNotices() {
	for _, msg := range s.notices.drain() {
		fmt.Fprintln(s.app.Err, msg)
	}
}

func (s *chatSession) run(ctx context.Context) error {
	out := s.app.Out
	s.printWelcome()

	for {
		if ctx.Err() != nil {
			return nil
		}
		s.printNotices()

		input, err := s.input.ReadInput(PromptStyle.Render("buildscope> "))
		if err != nil {
			fmt.Fprintln(out)
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				s.printExitSummary()
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := s.handleSlashCommand(input)
			if err != nil {
				DisplayError(s.app.Err, err, false)
			}
			if !keepGoing {
				s.printExitSummary()
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			s.printExitSummary()
			return nil
		}

		if err := s.ask(ctx, input); err != nil {
			DisplayError(s.app.Err, err, false)
		}
	}
}

// ask sends one question and prints the answer. A Loading placeholder is
// shown while the request is outstanding.
func (s *chatSession) ask(ctx context.Context, question string) error {
	project, err := s.app.project("")
	if err != nil {
		return err
	}

	loading := model.NewLoadingMessage()
	s.showLoading(loading)
	turn, err := s.app.Assistant.Ask(ctx, project, question, assistant.AskOptions{})
	s.clearLoading()
	if err != nil {
		return err
	}
	s.asked++

	out := s.app.Out
	fmt.Fprintln(out, AssistantStyle.Render(turn.Answer.Role.DisplayName()))
	fmt.Fprintln(out, s.app.renderText(turn.Answer.Content, s.rich))
	s.app.writeReferences(turn.Answer.References)
	fmt.Fprintln(out)
	return nil
}

func (s *chatSession) showLoading(m model.Message) {
	if s.app.TTY {
		fmt.Fprint(s.app.Out, DimStyle.Render(m.Role.DisplayName()+" searching the code"))
	}
}

func (s *chatSession) clearLoading() {
	if s.app.TTY {
		termenv.NewOutput(s.app.Out).ClearLine()
		fmt.Fprint(s.app.Out, "\r")
	}
}

func (s *chatSession) printWelcome() {
	out := s.app.Out
	welcome := assistant.Welcome(s.app.Projects.Current())
	fmt.Fprintln(out, TitleStyle.Render("BuildScope"))
	fmt.Fprintln(out, s.app.renderText(welcome.Content, false))
	fmt.Fprintln(out, DimStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Fprintln(out)
}

func (s *chatSession) printExitSummary() {
	if s.asked == 0 {
		return
	}
	noun := "questions"
	if s.asked == 1 {
		noun = "question"
	}
	fmt.Fprintln(s.app.Out, DimStyle.Render(fmt.Sprintf("%d %s asked this session.", s.asked, noun)))
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs a /command. It returns false when chat should end.
func (s *chatSession) handleSlashCommand(input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
	out := s.app.Out

	switch cmd {
	case "/quit", "/q", "/exit":
		return false, nil

	case "/help", "/h", "/?":
		s.printHelp()

	case "/clear", "/c":
		project, err := s.app.project("")
		if err != nil {
			return true, err
		}
		s.app.Sessions.Clear(project.Name)
		fmt.Fprintln(out, SuccessStyle.Render("Conversation cleared for "+project.Name))

	case "/history":
		project, err := s.app.project("")
		if err != nil {
			return true, err
		}
		s.printHistory(project.Name)

	case "/project":
		if arg == "" {
			cur := s.app.Projects.Current()
			if cur == nil {
				fmt.Fprintln(out, DimStyle.Render("No project selected."))
			} else {
				fmt.Fprintln(out, formatKeyValue("Project", cur.String()))
			}
			return true, nil
		}
		p, err := s.app.project(arg)
		if err != nil {
			return true, err
		}
		s.app.Projects.SetCurrent(&p)
		n := len(s.app.Sessions.Load(p.Name))
		fmt.Fprintf(out, "%s %s (%d messages)\n", SuccessStyle.Render("Switched to"), p.String(), n)

	case "/projects":
		list, err := s.app.Projects.List()
		if err != nil {
			return true, err
		}
		writeProjectTable(out, list, currentName(s.app))

	case "/rich":
		s.rich = !s.rich
		fmt.Fprintf(out, "Rich rendering %s\n", onOff(s.rich))

	default:
		return true, usageErr("chat", "unknown command "+cmd, "/help")
	}
	return true, nil
}

func (s *chatSession) printHelp() {
	out := s.app.Out
	fmt.Fprintln(out, TitleStyle.Render("Commands"))
	for _, row := range [][2]string{
		{"/help", "Show this help"},
		{"/clear", "Clear the current project's conversation"},
		{"/history", "Show the conversation so far"},
		{"/project NAME", "Switch project"},
		{"/projects", "List projects"},
		{"/rich", "Toggle full markdown rendering"},
		{"/quit", "Exit chat"},
	} {
		fmt.Fprintln(out, "  "+formatKeyValue(row[0], row[1]))
	}
}

func (s *chatSession) printHistory(project string) {
	out := s.app.Out
	msgs := s.app.Sessions.Load(project)
	if len(msgs) == 0 {
		fmt.Fprintln(out, DimStyle.Render("No messages yet for "+project+"."))
		return
	}
	for _, m := range msgs {
		label := UserStyle.Render(m.Role.DisplayName())
		if m.Role == model.RoleAssistant {
			label = AssistantStyle.Render(m.Role.DisplayName())
		}
		fmt.Fprintf(out, "%s %s\n", label, DimStyle.Render(m.Timestamp.Format("15:04")))
		fmt.Fprintln(out, s.app.renderText(m.Content, false))
		fmt.Fprintln(out)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
