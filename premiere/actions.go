package premiere

import (
	"errors"
	"fmt"

	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
)

func requireString(args schema.Arguments, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("parameter %q is required", key)
	}
	return value, nil
}

// optionalString returns nil when the argument is absent or empty so the
// key is serialized as JSON null, which is what the panel receives when the
// caller leaves the parameter out.
func optionalString(args schema.Arguments, key string) interface{} {
	value, _ := args[key].(string)
	if value == "" {
		return nil
	}
	return value
}

func optionalBool(args schema.Arguments, key string) bool {
	value, _ := args[key].(bool)
	return value
}

func optionalMap(args schema.Arguments, key string) map[string]interface{} {
	value, _ := args[key].(map[string]interface{})
	if value == nil {
		value = map[string]interface{}{}
	}
	return value
}

func requireStringSlice(args schema.Arguments, key string) ([]string, error) {
	raw, ok := args[key].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("parameter %q is required and must be a non-empty array", key)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("parameter %q must contain only strings", key)
		}
		out = append(out, str)
	}
	return out, nil
}

func projectActions() map[string]actionBuilder {
	return map[string]actionBuilder{
		"get_active": func(_ schema.Arguments) (string, interface{}, error) {
			return "getActiveProject", map[string]interface{}{}, nil
		},
		"open_project": func(args schema.Arguments) (string, interface{}, error) {
			path, err := requireString(args, "path")
			if err != nil {
				return "", nil, err
			}
			return "openProject", map[string]interface{}{
				"path":    path,
				"options": optionalMap(args, "options"),
			}, nil
		},
		"create_project": func(args schema.Arguments) (string, interface{}, error) {
			path, err := requireString(args, "path")
			if err != nil {
				return "", nil, err
			}
			return "createProject", map[string]interface{}{"path": path}, nil
		},
		"save_project": func(_ schema.Arguments) (string, interface{}, error) {
			return "saveProject", map[string]interface{}{}, nil
		},
		"save_project_as": func(args schema.Arguments) (string, interface{}, error) {
			path, err := requireString(args, "path")
			if err != nil {
				return "", nil, err
			}
			return "saveProjectAs", map[string]interface{}{"path": path}, nil
		},
		"close_project": func(args schema.Arguments) (string, interface{}, error) {
			return "closeProject", map[string]interface{}{
				"options": optionalMap(args, "options"),
			}, nil
		},
	}
}

func sequenceActions() map[string]actionBuilder {
	return map[string]actionBuilder{
		"get_active": func(_ schema.Arguments) (string, interface{}, error) {
			return "getActiveSequence", map[string]interface{}{}, nil
		},
		"create_sequence": func(args schema.Arguments) (string, interface{}, error) {
			name, err := requireString(args, "name")
			if err != nil {
				return "", nil, err
			}
			return "createSequence", map[string]interface{}{
				"name":       name,
				"presetPath": optionalString(args, "preset_path"),
			}, nil
		},
		"create_sequence_from_media": func(args schema.Arguments) (string, interface{}, error) {
			name, err := requireString(args, "name")
			if err != nil {
				return "", nil, err
			}
			clips, err := requireStringSlice(args, "clip_project_items")
			if err != nil {
				return "", nil, err
			}
			return "createSequenceFromMedia", map[string]interface{}{
				"name":             name,
				"clipProjectItems": clips,
				"targetBin":        optionalString(args, "target_bin"),
			}, nil
		},
		"set_active_sequence": func(args schema.Arguments) (string, interface{}, error) {
			sequenceID, err := requireString(args, "sequence_id")
			if err != nil {
				return "", nil, err
			}
			return "setActiveSequence", map[string]interface{}{"sequenceId": sequenceID}, nil
		},
		"get_sequence_list": func(_ schema.Arguments) (string, interface{}, error) {
			return "getSequenceList", map[string]interface{}{}, nil
		},
		"get_player_position": func(_ schema.Arguments) (string, interface{}, error) {
			return "getPlayerPosition", map[string]interface{}{}, nil
		},
		"set_player_position": func(args schema.Arguments) (string, interface{}, error) {
			position, ok := args["position"].(float64)
			if !ok {
				return "", nil, errors.New(`parameter "position" is required and must be a number`)
			}
			return "setPlayerPosition", map[string]interface{}{"position": position}, nil
		},
	}
}

func mediaActions() map[string]actionBuilder {
	return map[string]actionBuilder{
		"import_files": func(args schema.Arguments) (string, interface{}, error) {
			filePaths, err := requireStringSlice(args, "file_paths")
			if err != nil {
				return "", nil, err
			}
			return "importFiles", map[string]interface{}{
				"filePaths":        filePaths,
				"suppressUI":       optionalBool(args, "suppress_ui"),
				"targetBin":        optionalString(args, "target_bin"),
				"asNumberedStills": optionalBool(args, "as_numbered_stills"),
			}, nil
		},
		"import_sequences": func(args schema.Arguments) (string, interface{}, error) {
			projectPath, err := requireString(args, "project_path")
			if err != nil {
				return "", nil, err
			}
			sequenceIDs, err := requireStringSlice(args, "sequence_ids")
			if err != nil {
				return "", nil, err
			}
			return "importSequences", map[string]interface{}{
				"projectPath": projectPath,
				"sequenceIds": sequenceIDs,
			}, nil
		},
		"import_ae_comps": func(args schema.Arguments) (string, interface{}, error) {
			aepPath, err := requireString(args, "aep_path")
			if err != nil {
				return "", nil, err
			}
			compNames, err := requireStringSlice(args, "comp_names")
			if err != nil {
				return "", nil, err
			}
			return "importAEComps", map[string]interface{}{
				"aepPath":   aepPath,
				"compNames": compNames,
				"targetBin": optionalString(args, "target_bin"),
			}, nil
		},
		"import_all_ae_comps": func(args schema.Arguments) (string, interface{}, error) {
			aepPath, err := requireString(args, "aep_path")
			if err != nil {
				return "", nil, err
			}
			return "importAllAEComps", map[string]interface{}{
				"aepPath":   aepPath,
				"targetBin": optionalString(args, "target_bin"),
			}, nil
		},
	}
}
