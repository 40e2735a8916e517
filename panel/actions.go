package panel

import (
	"encoding/json"
	"fmt"

	"github.com/morim3/mcp-adobe-premiere/panel/host"
)

func decode(data json.RawMessage, into interface{}) error {
	if err := codec.Unmarshal(data, into); err != nil {
		return fmt.Errorf("invalid instruction data: %w", err)
	}
	return nil
}

func registerProjectActions(d *Dispatcher, api host.API) {
	d.register("getActiveProject", func(_ json.RawMessage) (interface{}, error) {
		return api.ActiveProject()
	})

	d.register("openProject", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			Path    string                 `json:"path"`
			Options map[string]interface{} `json:"options"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.OpenProject(args.Path, args.Options)
	})

	d.register("createProject", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			Path string `json:"path"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.CreateProject(args.Path)
	})

	d.register("saveProject", func(_ json.RawMessage) (interface{}, error) {
		return api.SaveProject()
	})

	d.register("saveProjectAs", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			Path string `json:"path"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.SaveProjectAs(args.Path)
	})

	d.register("closeProject", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			Options map[string]interface{} `json:"options"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		if err := api.CloseProject(args.Options); err != nil {
			return nil, err
		}
		return map[string]interface{}{"closed": true}, nil
	})
}

func registerSequenceActions(d *Dispatcher, api host.API) {
	d.register("getActiveSequence", func(_ json.RawMessage) (interface{}, error) {
		return api.ActiveSequence()
	})

	d.register("createSequence", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			Name       string `json:"name"`
			PresetPath string `json:"presetPath"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.CreateSequence(args.Name, args.PresetPath)
	})

	d.register("createSequenceFromMedia", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			Name             string   `json:"name"`
			ClipProjectItems []string `json:"clipProjectItems"`
			TargetBin        string   `json:"targetBin"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.CreateSequenceFromMedia(args.Name, args.ClipProjectItems, args.TargetBin)
	})

	d.register("setActiveSequence", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			SequenceID string `json:"sequenceId"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.SetActiveSequence(args.SequenceID)
	})

	d.register("getSequenceList", func(_ json.RawMessage) (interface{}, error) {
		sequences, err := api.SequenceList()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"sequences": sequences}, nil
	})

	d.register("getPlayerPosition", func(_ json.RawMessage) (interface{}, error) {
		position, err := api.PlayerPosition()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"position": position}, nil
	})

	d.register("setPlayerPosition", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			Position float64 `json:"position"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		if err := api.SetPlayerPosition(args.Position); err != nil {
			return nil, err
		}
		return map[string]interface{}{"position": args.Position}, nil
	})
}

func registerMediaActions(d *Dispatcher, api host.API) {
	d.register("importFiles", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			FilePaths        []string `json:"filePaths"`
			SuppressUI       bool     `json:"suppressUI"`
			TargetBin        string   `json:"targetBin"`
			AsNumberedStills bool     `json:"asNumberedStills"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.ImportFiles(args.FilePaths, args.SuppressUI, args.TargetBin, args.AsNumberedStills)
	})

	d.register("importSequences", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			ProjectPath string   `json:"projectPath"`
			SequenceIDs []string `json:"sequenceIds"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.ImportSequences(args.ProjectPath, args.SequenceIDs)
	})

	d.register("importAEComps", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			AepPath   string   `json:"aepPath"`
			CompNames []string `json:"compNames"`
			TargetBin string   `json:"targetBin"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.ImportAEComps(args.AepPath, args.CompNames, args.TargetBin)
	})

	d.register("importAllAEComps", func(data json.RawMessage) (interface{}, error) {
		var args struct {
			AepPath   string `json:"aepPath"`
			TargetBin string `json:"targetBin"`
		}
		if err := decode(data, &args); err != nil {
			return nil, err
		}
		return api.ImportAllAEComps(args.AepPath, args.TargetBin)
	})
}
