// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Component wiring shared by every buildscope command.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/buildscope/buildscope/internal/assistant"
	"github.com/buildscope/buildscope/internal/config"
	"github.com/buildscope/buildscope/internal/markup"
	"github.com/buildscope/buildscope/internal/model"
	"github.com/buildscope/buildscope/internal/query"
	"github.com/buildscope/buildscope/internal/session"
	"github.com/buildscope/buildscope/internal/storage"
	"github.com/buildscope/buildscope/internal/util"
)

// EnvDebug enables request logging when set to "1".
const EnvDebug = "BUILDSCOPE_DEBUG"

// App holds the components a command runs against. It is built once in
// main and passed down; nothing here is a package-level singleton.
type App struct {
	Out io.Writer
	Err io.Writer

	Settings     *config.Settings
	SettingsPath string
	Resolver     *config.Resolver
	Projects     *storage.ProjectStore
	Sessions     *session.Store
	Client       *query.Client
	Assistant    *assistant.Assistant
	Logger       *log.Logger

	// Color enables styled rendering. TTY enables terminal-width wrapping.
	Color bool
	TTY   bool
}

// NewLogger returns the shared logger: stderr when verbose (or
// BUILDSCOPE_DEBUG=1), otherwise discarded.
func NewLogger(verbose bool, w io.Writer) *log.Logger {
	if verbose || os.Getenv(EnvDebug) == "1" {
		return log.New(w, "buildscope: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// Setup loads settings and credentials from their default locations and
// wires the components.
func Setup(args Args) (*App, error) {
	logger := NewLogger(args.Verbose, os.Stderr)

	settingsPath := config.SettingsPath()
	settings, err := config.LoadSettings(settingsPath)
	if settings == nil {
		return nil, err
	}
	if err != nil && !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s %v (using defaults)\n", WarningStyle.Render("[WARN]"), err)
	}

	resolver := config.NewResolver(config.DefaultCredentialsPath())
	if ferr := resolver.FileError(); ferr != nil {
		logger.Printf("ignoring credentials file %s: %v", resolver.Path(), ferr)
	}

	app, err := NewApp(settings, settingsPath, resolver, logger)
	if err != nil {
		return nil, err
	}
	app.Out = os.Stdout
	app.Err = os.Stderr
	app.Color = ColorsEnabled()
	app.TTY = IsStdoutTTY()
	return app, nil
}

// NewApp wires the components from already loaded settings. Output goes to
// io.Discard until Out and Err are set.
func NewApp(settings *config.Settings, settingsPath string, resolver *config.Resolver, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	projects, err := storage.NewProjectStore(settings.ProjectsDir)
	if err != nil {
		return nil, err
	}
	if name := settings.CurrentProject; name != "" {
		if p, ok := projects.Load(name); ok {
			projects.SetCurrent(&p)
		} else {
			logger.Printf("current project %q no longer exists", name)
		}
	}

	client := query.NewClient(resolver).
		WithTimeout(settings.Timeout()).
		WithMinInterval(settings.MinInterval()).
		WithLogger(logger)

	sessions := session.NewStore()
	sessions.OnChange(func(c session.Change) {
		logger.Printf("session %q %s (%d messages)", c.Project, c.Kind, c.Count)
	})

	return &App{
		Out:          io.Discard,
		Err:          io.Discard,
		Settings:     settings,
		SettingsPath: settingsPath,
		Resolver:     resolver,
		Projects:     projects,
		Sessions:     sessions,
		Client:       client,
		Assistant:    assistant.New(sessions, client).WithLogger(logger),
		Logger:       logger,
	}, nil
}

// project returns the named project, or the current one when name is "".
func (a *App) project(name string) (model.ProjectContext, error) {
	if name == "" {
		cur := a.Projects.Current()
		if cur == nil {
			return model.ProjectContext{}, ErrNoProject
		}
		return *cur, nil
	}
	p, ok := a.Projects.Load(name)
	if !ok {
		return model.ProjectContext{}, &NotFoundError{Resource: "project", ID: name}
	}
	return p, nil
}

// saveSettings persists the settings file.
func (a *App) saveSettings() error {
	if err := a.Settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return config.SaveSettings(a.Settings, a.SettingsPath)
}

// =============================================================================
// ANSWER RENDERING
// =============================================================================

// renderText formats answer text for the terminal. Rich mode hands the full
// markdown to glamour and falls back to the line renderer on failure.
func (a *App) renderText(text string, rich bool) string {
	width := wrapWidth(a.Settings.UI.WordWrap, a.TTY)

	if rich && a.Color {
		out, err := markup.RenderRich(text, width)
		if err == nil {
			return strings.Trim(out, "\n")
		}
		a.Logger.Printf("rich rendering failed: %v", err)
	}

	lines := markup.Parse(text)
	if !a.Color {
		return markup.RenderPlain(lines)
	}
	return markup.Render(lines, markup.RenderOptions{Width: width})
}

// writeReferences prints the citations under an answer.
func (a *App) writeReferences(refs []model.Reference) {
	if len(refs) == 0 {
		return
	}
	fmt.Fprintln(a.Out)
	fmt.Fprintln(a.Out, DimStyle.Render("References:"))
	width := wrapWidth(a.Settings.UI.WordWrap, a.TTY)
	for _, r := range refs {
		line := "§ " + r.String()
		if width > 0 {
			line = util.TruncateWidth(line, width-2)
		}
		fmt.Fprintln(a.Out, "  "+ReferenceStyle.Render(line))
	}
}
