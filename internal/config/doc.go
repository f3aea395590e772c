// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config resolves service credentials and loads client settings for
// buildscope.
//
// There are two independent layers:
//
//   - Credentials: the query service endpoint and API key. Read from the
//     environment first, then from a config.json beside the executable.
//   - Settings: client preferences in ~/.buildscope/settings.toml with
//     built-in defaults and BUILDSCOPE_* environment overrides.
//
// # Key Types
//
//   - Resolver: lazily resolves and caches the endpoint and API key
//   - Credentials: a snapshot of both values and where they came from
//   - Settings: the TOML-backed client preferences
//
// # Credential Precedence
//
// Each credential is resolved independently:
//   - BUILDSCOPE_SUPABASE_URL / BUILDSCOPE_API_KEY (when non-empty)
//   - config.json ("supabaseUrl", "apiKey")
//   - absent
//
// # Usage
//
//	r := config.NewResolver(config.DefaultCredentialsPath())
//	if !r.Configured() {
//	    // prompt the user to run "buildscope config set"
//	}
//
//	settings, err := config.LoadSettings(config.SettingsPath())
package config
