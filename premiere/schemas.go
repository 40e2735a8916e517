package premiere

import "github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"

func stringProperty(description string) schema.JSONSchemaProperty {
	return schema.JSONSchemaProperty{Type: "string", Description: description}
}

func stringArrayProperty(description string) schema.JSONSchemaProperty {
	return schema.JSONSchemaProperty{
		Type:        "array",
		Description: description,
		Items:       &schema.JSONSchemaProperty{Type: "string"},
	}
}

func boolProperty(description string) schema.JSONSchemaProperty {
	return schema.JSONSchemaProperty{Type: "boolean", Description: description, Default: false}
}

func actionProperty(description string, actions []interface{}, defaultAction interface{}) schema.JSONSchemaProperty {
	return schema.JSONSchemaProperty{
		Type:        "string",
		Description: description,
		Enum:        actions,
		Default:     defaultAction,
	}
}

func projectSchema() *schema.JSONSchemaProperty {
	return &schema.JSONSchemaProperty{
		Type: "object",
		Properties: map[string]schema.JSONSchemaProperty{
			"action": actionProperty(
				"Project action to execute",
				[]interface{}{"get_active", "open_project", "create_project", "save_project", "save_project_as", "close_project"},
				"get_active",
			),
			"path": stringProperty("Project file path (open_project, create_project, save_project_as)"),
			"options": {
				Type:        "object",
				Description: "Host-specific options passed through unchanged (open_project, close_project)",
			},
		},
	}
}

func sequenceSchema() *schema.JSONSchemaProperty {
	return &schema.JSONSchemaProperty{
		Type: "object",
		Properties: map[string]schema.JSONSchemaProperty{
			"action": actionProperty(
				"Sequence action to execute",
				[]interface{}{"get_active", "create_sequence", "create_sequence_from_media", "set_active_sequence", "get_sequence_list", "get_player_position", "set_player_position"},
				"get_active",
			),
			"name":               stringProperty("Sequence name (create_sequence, create_sequence_from_media)"),
			"preset_path":        stringProperty("Sequence preset path (create_sequence)"),
			"clip_project_items": stringArrayProperty("Project item identifiers to build the sequence from (create_sequence_from_media)"),
			"target_bin":         stringProperty("Destination bin name (create_sequence_from_media)"),
			"sequence_id":        stringProperty("Sequence identifier (set_active_sequence)"),
			"position": {
				Type:        "number",
				Description: "Playhead position in seconds (set_player_position)",
			},
		},
	}
}

func mediaSchema() *schema.JSONSchemaProperty {
	return &schema.JSONSchemaProperty{
		Type: "object",
		Properties: map[string]schema.JSONSchemaProperty{
			"action": actionProperty(
				"Media action to execute",
				[]interface{}{"import_files", "import_sequences", "import_ae_comps", "import_all_ae_comps"},
				nil,
			),
			"file_paths":         stringArrayProperty("Files to import (import_files)"),
			"suppress_ui":        boolProperty("Suppress host import dialogs (import_files)"),
			"target_bin":         stringProperty("Destination bin name"),
			"as_numbered_stills": boolProperty("Treat the files as a numbered still sequence (import_files)"),
			"project_path":       stringProperty("Source project path (import_sequences)"),
			"sequence_ids":       stringArrayProperty("Sequence identifiers to import (import_sequences)"),
			"aep_path":           stringProperty("After Effects project path (import_ae_comps, import_all_ae_comps)"),
			"comp_names":         stringArrayProperty("Composition names to import (import_ae_comps)"),
		},
		Required: []string{"action"},
	}
}
