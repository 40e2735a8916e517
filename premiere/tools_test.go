package premiere

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/morim3/mcp-adobe-premiere/bridge"
	"github.com/morim3/mcp-adobe-premiere/shared"
	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRelay struct {
	lastAction string
	lastData   interface{}
	result     json.RawMessage
	err        error
}

func (f *fakeRelay) SendInstruction(_ context.Context, action string, data interface{}) (json.RawMessage, error) {
	f.lastAction = action
	f.lastData = data
	return f.result, f.err
}

type envelope struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response"`
	Message  string          `json:"message"`
}

func callTool(t *testing.T, relay Relay, kind, defaultAction string, actions map[string]actionBuilder, args schema.Arguments) envelope {
	t.Helper()

	tools := NewTools(relay, zap.NewNop())
	handler := tools.makeHandler(kind, defaultAction, actions)

	msg := &shared.Message{Session: shared.NewBaseSession(zap.NewNop(), nil, nil)}
	_, content, err := handler(msg, args)
	require.NoError(t, err, "tool handlers must never return protocol errors")
	require.Len(t, content, 1)
	require.NotNil(t, content[0].Text)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(*content[0].Text), &env))
	return env
}

func TestManageProject_DefaultAction(t *testing.T) {
	relay := &fakeRelay{result: json.RawMessage(`{"name":"demo"}`)}

	env := callTool(t, relay, "project", "get_active", projectActions(), schema.Arguments{})
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"name":"demo"}`, string(env.Response))
	assert.Equal(t, "getActiveProject", relay.lastAction)
}

func TestManageProject_OpenProject(t *testing.T) {
	relay := &fakeRelay{result: json.RawMessage(`{}`)}

	env := callTool(t, relay, "project", "get_active", projectActions(), schema.Arguments{
		"action": "open_project",
		"path":   "/work/demo.prproj",
	})
	assert.True(t, env.Success)
	assert.Equal(t, "openProject", relay.lastAction)
	assert.Equal(t, map[string]interface{}{
		"path":    "/work/demo.prproj",
		"options": map[string]interface{}{},
	}, relay.lastData)
}

func TestManageProject_MissingPath(t *testing.T) {
	relay := &fakeRelay{}

	env := callTool(t, relay, "project", "get_active", projectActions(), schema.Arguments{
		"action": "create_project",
	})
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, `"path"`)
	assert.Empty(t, relay.lastAction, "nothing must reach the relay on bad arguments")
}

func TestManageProject_UnknownAction(t *testing.T) {
	env := callTool(t, &fakeRelay{}, "project", "get_active", projectActions(), schema.Arguments{
		"action": "format_disk",
	})
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Unknown project action: format_disk")
}

func TestManageProject_RelayFailureBecomesEnvelope(t *testing.T) {
	relay := &fakeRelay{err: bridge.ErrNoPanel}

	env := callTool(t, relay, "project", "get_active", projectActions(), schema.Arguments{})
	assert.False(t, env.Success)
	assert.Equal(t, bridge.ErrNoPanel.Error(), env.Message)
}

func TestManageSequence_SetPlayerPosition(t *testing.T) {
	relay := &fakeRelay{result: json.RawMessage(`{"position":2.5}`)}

	env := callTool(t, relay, "sequence", "get_active", sequenceActions(), schema.Arguments{
		"action":   "set_player_position",
		"position": 2.5,
	})
	assert.True(t, env.Success)
	assert.Equal(t, "setPlayerPosition", relay.lastAction)
	assert.Equal(t, map[string]interface{}{"position": 2.5}, relay.lastData)

	env = callTool(t, relay, "sequence", "get_active", sequenceActions(), schema.Arguments{
		"action":   "set_player_position",
		"position": "not a number",
	})
	assert.False(t, env.Success)
}

func TestManageSequence_CreateFromMedia(t *testing.T) {
	relay := &fakeRelay{result: json.RawMessage(`{}`)}

	env := callTool(t, relay, "sequence", "get_active", sequenceActions(), schema.Arguments{
		"action":             "create_sequence_from_media",
		"name":               "cut",
		"clip_project_items": []interface{}{"clip-1", "clip-2"},
		"target_bin":         "bins/footage",
	})
	assert.True(t, env.Success)
	assert.Equal(t, "createSequenceFromMedia", relay.lastAction)
	assert.Equal(t, map[string]interface{}{
		"name":             "cut",
		"clipProjectItems": []string{"clip-1", "clip-2"},
		"targetBin":        "bins/footage",
	}, relay.lastData)
}

func TestManageMedia_RequiresAction(t *testing.T) {
	env := callTool(t, &fakeRelay{}, "media", "", mediaActions(), schema.Arguments{})
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Unknown media action")
}

func TestManageMedia_ImportFiles(t *testing.T) {
	relay := &fakeRelay{result: json.RawMessage(`{"imported":["/media/a.mov"]}`)}

	env := callTool(t, relay, "media", "", mediaActions(), schema.Arguments{
		"action":      "import_files",
		"file_paths":  []interface{}{"/media/a.mov"},
		"suppress_ui": true,
	})
	assert.True(t, env.Success)
	assert.Equal(t, "importFiles", relay.lastAction)
	assert.Equal(t, map[string]interface{}{
		"filePaths":        []string{"/media/a.mov"},
		"suppressUI":       true,
		"targetBin":        nil,
		"asNumberedStills": false,
	}, relay.lastData)

	env = callTool(t, relay, "media", "", mediaActions(), schema.Arguments{
		"action":     "import_files",
		"file_paths": []interface{}{"/media/a.mov", 42},
	})
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "only strings")
}

func TestManageMedia_ImportSequences(t *testing.T) {
	relay := &fakeRelay{result: json.RawMessage(`{}`)}

	env := callTool(t, relay, "media", "", mediaActions(), schema.Arguments{
		"action":       "import_sequences",
		"project_path": "/other/project.prproj",
		"sequence_ids": []interface{}{"s1"},
	})
	assert.True(t, env.Success)
	assert.Equal(t, "importSequences", relay.lastAction)
	assert.Equal(t, map[string]interface{}{
		"projectPath": "/other/project.prproj",
		"sequenceIds": []string{"s1"},
	}, relay.lastData)
}

func TestOmittedOptionalStringsSerializeAsNull(t *testing.T) {
	relay := &fakeRelay{result: json.RawMessage(`{}`)}

	env := callTool(t, relay, "sequence", "get_active", sequenceActions(), schema.Arguments{
		"action": "create_sequence",
		"name":   "cut",
	})
	assert.True(t, env.Success)
	assert.Equal(t, map[string]interface{}{
		"name":       "cut",
		"presetPath": nil,
	}, relay.lastData)

	payload, err := json.Marshal(relay.lastData)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"cut","presetPath":null}`, string(payload))

	env = callTool(t, relay, "media", "", mediaActions(), schema.Arguments{
		"action":   "import_all_ae_comps",
		"aep_path": "/work/comps.aep",
	})
	assert.True(t, env.Success)
	assert.Equal(t, map[string]interface{}{
		"aepPath":   "/work/comps.aep",
		"targetBin": nil,
	}, relay.lastData)
}

func TestNilResultBecomesEmptyObject(t *testing.T) {
	relay := &fakeRelay{result: nil}

	env := callTool(t, relay, "project", "get_active", projectActions(), schema.Arguments{})
	assert.True(t, env.Success)
	assert.JSONEq(t, `{}`, string(env.Response))
}
