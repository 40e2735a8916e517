// Package premiere defines the MCP tools exposed to the agent and translates
// each call into a relay instruction for the in-host panel.
package premiere

import (
	"context"
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/morim3/mcp-adobe-premiere/server"
	"github.com/morim3/mcp-adobe-premiere/shared"
	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
	"go.uber.org/zap"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Relay forwards an instruction to the connected panel and returns the host
// result. Any problem, including panel-reported failures, surfaces as an
// error.
type Relay interface {
	SendInstruction(ctx context.Context, action string, data interface{}) (json.RawMessage, error)
}

// actionBuilder converts tool arguments into the instruction action name and
// its data payload.
type actionBuilder func(args schema.Arguments) (string, interface{}, error)

type Tools struct {
	relay  Relay
	logger *zap.Logger
}

func NewTools(relay Relay, logger *zap.Logger) *Tools {
	return &Tools{
		relay:  relay,
		logger: logger.Named("premiere"),
	}
}

// ServerOptions returns the server options that register the three Premiere
// tools.
func (t *Tools) ServerOptions() []server.ServerOption {
	return []server.ServerOption{
		server.WithMCPTool(
			"manage_project",
			"Manage Adobe Premiere Pro projects. Actions: get_active, "+
				"open_project (path, options), create_project (path), save_project, "+
				"save_project_as (path), close_project (options).",
			projectSchema(),
			nil,
			t.makeHandler("project", "get_active", projectActions()),
		),
		server.WithMCPTool(
			"manage_sequence",
			"Manage Adobe Premiere Pro sequences. Actions: get_active, "+
				"create_sequence (name, preset_path), create_sequence_from_media "+
				"(name, clip_project_items, target_bin), set_active_sequence "+
				"(sequence_id), get_sequence_list, get_player_position, "+
				"set_player_position (position).",
			sequenceSchema(),
			nil,
			t.makeHandler("sequence", "get_active", sequenceActions()),
		),
		server.WithMCPTool(
			"manage_media",
			"Manage Adobe Premiere Pro media. Actions: import_files (file_paths, "+
				"suppress_ui, target_bin, as_numbered_stills), import_sequences "+
				"(project_path, sequence_ids), import_ae_comps (aep_path, comp_names, "+
				"target_bin), import_all_ae_comps (aep_path, target_bin).",
			mediaSchema(),
			nil,
			t.makeHandler("media", "", mediaActions()),
		),
	}
}

// makeHandler builds the uniform tool handler: resolve the action, relay the
// instruction, normalize the outcome into the success/failure envelope. The
// handler never returns a Go error; failures travel inside the envelope.
func (t *Tools) makeHandler(kind string, defaultAction string, actions map[string]actionBuilder) func(*shared.Message, schema.Arguments) (*schema.Meta, []schema.Content, error) {
	return func(msg *shared.Message, args schema.Arguments) (*schema.Meta, []schema.Content, error) {
		if args == nil {
			args = schema.Arguments{}
		}

		action, _ := args["action"].(string)
		if action == "" {
			action = defaultAction
		}

		builder, ok := actions[action]
		if !ok {
			return nil, failureEnvelope(fmt.Sprintf("Unknown %s action: %s", kind, action)), nil
		}

		instructionAction, data, err := builder(args)
		if err != nil {
			return nil, failureEnvelope(fmt.Sprintf("Error in %s: %s", action, err)), nil
		}

		logger := t.logger.With(
			zap.String("sessionId", msg.Session.GetID()),
			zap.String("action", instructionAction),
		)
		logger.Debug("Relaying instruction to panel")

		result, err := t.relay.SendInstruction(context.Background(), instructionAction, data)
		if err != nil {
			logger.Info("Instruction failed", zap.Error(err))
			return nil, failureEnvelope(err.Error()), nil
		}

		logger.Debug("Instruction succeeded")
		return nil, successEnvelope(result), nil
	}
}

func successEnvelope(result json.RawMessage) []schema.Content {
	if len(result) == 0 {
		result = json.RawMessage("{}")
	}
	payload, err := codec.Marshal(map[string]interface{}{
		"success":  true,
		"response": result,
	})
	if err != nil {
		return failureEnvelope(fmt.Sprintf("failed to encode result: %v", err))
	}
	return schema.NewTextContent(string(payload))
}

func failureEnvelope(message string) []schema.Content {
	payload, _ := codec.Marshal(map[string]interface{}{
		"success": false,
		"message": message,
	})
	return schema.NewTextContent(string(payload))
}
