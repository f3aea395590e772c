// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "fmt"

// ProjectContext describes the building a conversation is about. Name is the
// storage key; the other three fields are sent to the query service.
type ProjectContext struct {
	Name             string `json:"name"`
	BuildingClass    string `json:"building_class"`
	State            string `json:"state"`
	ConstructionType string `json:"construction_type"`
}

// String formats the project for pickers and status lines.
func (p ProjectContext) String() string {
	return fmt.Sprintf("%s | %s | Class %s | %s", p.Name, p.State, p.BuildingClass, p.ConstructionType)
}
