package panel

import (
	"encoding/json"
	"testing"

	"github.com/morim3/mcp-adobe-premiere/panel/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDispatcher() *Dispatcher {
	return NewDispatcher(host.NewSimulator(), zap.NewNop())
}

func TestDispatcher_UnknownAction(t *testing.T) {
	d := newTestDispatcher()

	resp := d.Dispatch("id-1", "launchRocket", nil)
	assert.Equal(t, "id-1", resp.ID)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown action: launchRocket")
}

func TestDispatcher_SuccessEcho(t *testing.T) {
	d := newTestDispatcher()

	resp := d.Dispatch("id-2", "createProject", json.RawMessage(`{"path":"/work/demo.prproj"}`))
	require.True(t, resp.Success, "error: %s", resp.Error)
	assert.Equal(t, "id-2", resp.ID)

	var project host.Project
	require.NoError(t, json.Unmarshal(resp.Result, &project))
	assert.Equal(t, "demo", project.Name)
}

func TestDispatcher_HostErrorBecomesFailureEnvelope(t *testing.T) {
	d := newTestDispatcher()

	resp := d.Dispatch("id-3", "saveProject", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, host.ErrNoProject.Error(), resp.Error)
}

func TestDispatcher_InvalidDataBecomesFailureEnvelope(t *testing.T) {
	d := newTestDispatcher()

	resp := d.Dispatch("id-4", "openProject", json.RawMessage(`{"path":42}`))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "invalid instruction data")
}

func TestDispatcher_EmptyDataTreatedAsNoArguments(t *testing.T) {
	d := newTestDispatcher()

	// getActiveProject takes no data; a missing data field must not break it.
	resp := d.Dispatch("id-5", "getActiveProject", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, host.ErrNoProject.Error(), resp.Error)
}

func TestDispatcher_PanicRecovered(t *testing.T) {
	d := newTestDispatcher()
	d.register("explode", func(json.RawMessage) (interface{}, error) {
		panic("kaboom")
	})

	resp := d.Dispatch("id-6", "explode", nil)
	assert.Equal(t, "id-6", resp.ID)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "kaboom")
}

func TestDispatcher_AllActionsRegistered(t *testing.T) {
	d := newTestDispatcher()

	expected := []string{
		"getActiveProject", "openProject", "createProject", "saveProject", "saveProjectAs", "closeProject",
		"getActiveSequence", "createSequence", "createSequenceFromMedia", "setActiveSequence",
		"getSequenceList", "getPlayerPosition", "setPlayerPosition",
		"importFiles", "importSequences", "importAEComps", "importAllAEComps",
	}
	assert.ElementsMatch(t, expected, d.Actions())
}

func TestDispatcher_SequenceFlow(t *testing.T) {
	d := newTestDispatcher()

	resp := d.Dispatch("p", "createProject", json.RawMessage(`{"path":"/work/demo.prproj"}`))
	require.True(t, resp.Success)

	resp = d.Dispatch("s", "createSequence", json.RawMessage(`{"name":"main","presetPath":""}`))
	require.True(t, resp.Success)

	resp = d.Dispatch("pos", "setPlayerPosition", json.RawMessage(`{"position":4.2}`))
	require.True(t, resp.Success)

	resp = d.Dispatch("get", "getPlayerPosition", nil)
	require.True(t, resp.Success)
	assert.JSONEq(t, `{"position":4.2}`, string(resp.Result))

	resp = d.Dispatch("list", "getSequenceList", nil)
	require.True(t, resp.Success)

	var listResult struct {
		Sequences []host.Sequence `json:"sequences"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &listResult))
	require.Len(t, listResult.Sequences, 1)
	assert.Equal(t, "main", listResult.Sequences[0].Name)
}
