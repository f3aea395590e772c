// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// project_cmd.go - The "buildscope project" command.
//
// Command: project
// Aliases: projects, p
//
// Subcommands:
//
//	create NAME --class C --state S --type T [--use]
//	list
//	show [NAME]
//	delete NAME --confirm
//	use NAME | use --clear
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/buildscope/buildscope/internal/model"
	"github.com/buildscope/buildscope/internal/util"
)

// HandleProject dispatches project subcommands.
func HandleProject(app *App, args Args) error {
	p := NewArgParser(args.Raw, "confirm", "use", "clear")

	switch strings.ToLower(p.Subcommand()) {
	case "create", "new", "add":
		return handleProjectCreate(app, args, p)
	case "", "list", "ls":
		return handleProjectList(app, args)
	case "show", "info":
		return handleProjectShow(app, args, p)
	case "delete", "rm", "remove":
		return handleProjectDelete(app, args, p)
	case "use", "select":
		return handleProjectUse(app, args, p)
	default:
		return usageErr("project", "unknown subcommand "+p.Subcommand(), "buildscope project list")
	}
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func handleProjectCreate(app *App, args Args, p *ArgParser) error {
	const example = `buildscope project create "Harbour Tower" --class 2 --state NSW --type A`

	name := strings.TrimSpace(JoinPositionalArgs(p, 1))
	if name == "" {
		return usageErr("project create", "a project name is required", example)
	}
	project := model.ProjectContext{
		Name:             name,
		BuildingClass:    strings.TrimSpace(p.Flag("class")),
		State:            strings.TrimSpace(p.Flag("state")),
		ConstructionType: strings.TrimSpace(p.Flag("type")),
	}
	var missing []string
	for _, f := range []struct{ flag, value string }{
		{"--class", project.BuildingClass},
		{"--state", project.State},
		{"--type", project.ConstructionType},
	} {
		if f.value == "" {
			missing = append(missing, f.flag)
		}
	}
	if len(missing) > 0 {
		return usageErr("project create", "missing "+strings.Join(missing, ", "), example)
	}

	_, existed := app.Projects.Load(name)
	if err := app.Projects.Create(project); err != nil {
		return err
	}

	if p.BoolFlag("use") {
		if err := selectProject(app, &project); err != nil {
			return err
		}
	}

	if args.JSON {
		return NewJSONResponse("project create", projectData(project, currentName(app))).Write(app.Out)
	}
	verb := "Created"
	if existed {
		verb = "Updated"
	}
	fmt.Fprintf(app.Out, "%s %s\n", SuccessStyle.Render(verb+" project"), project.String())
	return nil
}

func handleProjectList(app *App, args Args) error {
	list, err := app.Projects.List()
	if err != nil {
		return err
	}
	current := currentName(app)

	if args.JSON {
		data := make([]ProjectData, 0, len(list))
		for _, pr := range list {
			data = append(data, projectData(pr, current))
		}
		return NewJSONResponse("project list", data).Write(app.Out)
	}

	if len(list) == 0 {
		fmt.Fprintln(app.Out, "No projects yet.")
		fmt.Fprintln(app.Out, DimStyle.Render(`Create one with: buildscope project create NAME --class C --state S --type T`))
		return nil
	}
	writeProjectTable(app.Out, list, current)
	return nil
}

func handleProjectShow(app *App, args Args, p *ArgParser) error {
	project, err := app.project(JoinPositionalArgs(p, 1))
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("project show", projectData(project, currentName(app))).Write(app.Out)
	}

	fmt.Fprintln(app.Out, TitleStyle.Render(project.Name))
	fmt.Fprintln(app.Out, formatKeyValue("Building class", project.BuildingClass))
	fmt.Fprintln(app.Out, formatKeyValue("State", project.State))
	fmt.Fprintln(app.Out, formatKeyValue("Construction", project.ConstructionType))
	if project.Name == currentName(app) {
		fmt.Fprintln(app.Out, DimStyle.Render("(current project)"))
	}
	return nil
}

func handleProjectDelete(app *App, args Args, p *ArgParser) error {
	name := strings.TrimSpace(JoinPositionalArgs(p, 1))
	if name == "" {
		return usageErr("project delete", "a project name is required", "buildscope project delete NAME --confirm")
	}
	if !p.BoolFlag("confirm") {
		return usageErr("project delete", "refusing to delete "+name+" without --confirm",
			"buildscope project delete "+quoteArg(name)+" --confirm")
	}

	wasCurrent := currentName(app) == name
	deleted, err := app.Projects.Delete(name)
	if err != nil {
		return err
	}
	if !deleted {
		return &NotFoundError{Resource: "project", ID: name}
	}
	app.Sessions.Clear(name)

	if wasCurrent || app.Settings.CurrentProject == name {
		app.Settings.CurrentProject = ""
		if err := app.saveSettings(); err != nil {
			return err
		}
	}

	if args.JSON {
		return NewJSONResponse("project delete", map[string]any{"name": name, "deleted": true}).Write(app.Out)
	}
	fmt.Fprintf(app.Out, "%s %s\n", SuccessStyle.Render("Deleted project"), name)
	return nil
}

func handleProjectUse(app *App, args Args, p *ArgParser) error {
	if p.BoolFlag("clear") {
		if err := selectProject(app, nil); err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("project use", map[string]any{"current": nil}).Write(app.Out)
		}
		fmt.Fprintln(app.Out, "No project selected.")
		return nil
	}

	name := strings.TrimSpace(JoinPositionalArgs(p, 1))
	if name == "" {
		return usageErr("project use", "a project name is required", "buildscope project use NAME")
	}
	project, err := app.project(name)
	if err != nil {
		return err
	}
	if err := selectProject(app, &project); err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("project use", projectData(project, project.Name)).Write(app.Out)
	}
	fmt.Fprintf(app.Out, "%s %s\n", SuccessStyle.Render("Now using"), project.String())
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// selectProject sets (or clears, for nil) the current project and persists
// the choice in the settings file.
func selectProject(app *App, p *model.ProjectContext) error {
	app.Projects.SetCurrent(p)
	app.Settings.CurrentProject = ""
	if p != nil {
		app.Settings.CurrentProject = p.Name
	}
	return app.saveSettings()
}

func currentName(app *App) string {
	if cur := app.Projects.Current(); cur != nil {
		return cur.Name
	}
	return ""
}

// Column widths for the project table.
const (
	colName  = 28
	colState = 8
	colClass = 8
)

// writeProjectTable prints projects as aligned columns. Widths are measured
// in display cells so wide characters line up.
func writeProjectTable(w io.Writer, list []model.ProjectContext, current string) {
	header := "  " + util.PadRight("NAME", colName) + " " +
		util.PadRight("STATE", colState) + " " +
		util.PadRight("CLASS", colClass) + " TYPE"
	fmt.Fprintln(w, DimStyle.Render(header))

	for _, p := range list {
		marker := "  "
		if p.Name == current {
			marker = "* "
		}
		row := marker + util.FitWidth(p.Name, colName) + " " +
			util.FitWidth(p.State, colState) + " " +
			util.FitWidth(p.BuildingClass, colClass) + " " + p.ConstructionType
		if p.Name == current {
			row = HighlightStyle.Render(row)
		}
		fmt.Fprintln(w, row)
	}
}

func quoteArg(s string) string {
	if strings.ContainsAny(s, " \t'\"") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
