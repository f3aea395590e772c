// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The "buildscope config" command.
//
// Command: config
//
// Subcommands:
//
//	show                         Credentials (key as fingerprint) and settings
//	set [--url URL] [--key KEY]  Write the credentials file
//	    [--wrap N] [--rich BOOL] [--projects-dir DIR]
//	path                         Print the credentials and settings paths
package cli

import (
	"fmt"
	"strings"

	"github.com/buildscope/buildscope/internal/config"
)

// HandleConfig dispatches config subcommands.
func HandleConfig(app *App, args Args) error {
	p := NewArgParser(args.Raw)

	switch strings.ToLower(p.Subcommand()) {
	case "", "show":
		return handleConfigShow(app, args)
	case "set":
		return handleConfigSet(app, args, p)
	case "path", "paths":
		return handleConfigPath(app, args)
	default:
		return usageErr("config", "unknown subcommand "+p.Subcommand(), "buildscope config show")
	}
}

func configData(app *App) ConfigData {
	creds := app.Resolver.Resolve()
	return ConfigData{
		CredentialsPath: app.Resolver.Path(),
		SettingsPath:    app.SettingsPath,
		Endpoint:        creds.Endpoint,
		EndpointSource:  creds.EndpointSource.String(),
		KeyFingerprint:  config.KeyFingerprint(creds.APIKey),
		KeySource:       creds.KeySource.String(),
		Configured:      creds.Configured(),
		ProjectsDir:     app.Projects.Dir(),
		CurrentProject:  currentName(app),
		WordWrap:        app.Settings.UI.WordWrap,
		Rich:            app.Settings.UI.Rich,
	}
}

func handleConfigShow(app *App, args Args) error {
	data := configData(app)
	if args.JSON {
		return NewJSONResponse("config show", data).Write(app.Out)
	}

	out := app.Out
	fmt.Fprintln(out, TitleStyle.Render("Credentials"))
	endpoint := data.Endpoint
	if endpoint == "" {
		endpoint = "(not set)"
	}
	fmt.Fprintln(out, formatKeyValue("Endpoint", endpoint)+DimStyle.Render("  ["+data.EndpointSource+"]"))
	fmt.Fprintln(out, formatKeyValue("API key", data.KeyFingerprint)+DimStyle.Render("  ["+data.KeySource+"]"))
	fmt.Fprintln(out, formatKeyValue("File", data.CredentialsPath))
	if err := app.Resolver.FileError(); err != nil {
		fmt.Fprintln(out, WarningStyle.Render("  credentials file ignored: "+err.Error()))
	}
	if !data.Configured {
		fmt.Fprintln(out, WarningStyle.Render("  not configured: questions cannot be sent"))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, TitleStyle.Render("Settings"))
	fmt.Fprintln(out, formatKeyValue("File", data.SettingsPath))
	fmt.Fprintln(out, formatKeyValue("Projects", data.ProjectsDir))
	current := data.CurrentProject
	if current == "" {
		current = "(none)"
	}
	fmt.Fprintln(out, formatKeyValue("Current project", current))
	fmt.Fprintln(out, formatKeyValue("Word wrap", fmt.Sprintf("%d", data.WordWrap)))
	fmt.Fprintln(out, formatKeyValue("Rich output", onOff(data.Rich)))
	return nil
}

func handleConfigSet(app *App, args Args, p *ArgParser) error {
	const example = "buildscope config set --url https://xyz.supabase.co --key KEY"

	url, key := p.Flag("url"), p.Flag("key")
	credsChanged := url != "" || key != ""
	settingsChanged := false

	if p.HasFlag("wrap") {
		n, err := p.FlagInt("wrap")
		if err != nil {
			return usageErr("config set", err.Error(), "buildscope config set --wrap 100")
		}
		app.Settings.UI.WordWrap = n
		settingsChanged = true
	}
	if p.HasFlag("rich") {
		b := p.BoolFlag("rich")
		if !b {
			var err error
			if b, err = ParseBoolString(p.Flag("rich")); err != nil {
				return usageErr("config set", err.Error(), "buildscope config set --rich true")
			}
		}
		app.Settings.UI.Rich = b
		settingsChanged = true
	}
	if dir := p.Flag("projects-dir"); dir != "" {
		app.Settings.ProjectsDir = dir
		settingsChanged = true
	}

	if !credsChanged && !settingsChanged {
		return usageErr("config set", "nothing to set", example)
	}

	if credsChanged {
		current := app.Resolver.Resolve()
		if url == "" {
			url = current.Endpoint
		}
		if key == "" {
			key = current.APIKey
		}
		url = strings.TrimSpace(url)
		key = strings.TrimSpace(key)
		if url != "" && !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
			return usageErr("config set", "--url must start with https:// or http://", example)
		}
		if err := app.Resolver.Save(url, key); err != nil {
			return err
		}
	}
	if settingsChanged {
		if err := app.saveSettings(); err != nil {
			return err
		}
	}

	if args.JSON {
		return NewJSONResponse("config set", configData(app)).Write(app.Out)
	}
	if credsChanged {
		fmt.Fprintf(app.Out, "%s %s\n", SuccessStyle.Render("Saved credentials to"), app.Resolver.Path())
	}
	if settingsChanged {
		fmt.Fprintf(app.Out, "%s %s\n", SuccessStyle.Render("Saved settings to"), app.SettingsPath)
	}
	return nil
}

func handleConfigPath(app *App, args Args) error {
	if args.JSON {
		return NewJSONResponse("config path", map[string]string{
			"credentials": app.Resolver.Path(),
			"settings":    app.SettingsPath,
			"projects":    app.Projects.Dir(),
		}).Write(app.Out)
	}
	fmt.Fprintln(app.Out, app.Resolver.Path())
	fmt.Fprintln(app.Out, app.SettingsPath)
	return nil
}
