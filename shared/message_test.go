package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessages_Single(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)

	msgs, err := ParseMessages(nil, body)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NotNil(t, msgs[0].Method)
	assert.Equal(t, "tools/list", *msgs[0].Method)
	assert.Equal(t, "1", msgs[0].ID.String())
}

func TestParseMessages_Batch(t *testing.T) {
	body := []byte(`[
		{"jsonrpc":"2.0","id":"a","method":"ping"},
		{"jsonrpc":"2.0","method":"notifications/initialized"}
	]`)

	msgs, err := ParseMessages(nil, body)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, `"a"`, msgs[0].ID.String())
	assert.True(t, msgs[1].ID.IsEmpty())
}

func TestParseMessages_Invalid(t *testing.T) {
	_, err := ParseMessages(nil, []byte(`{not json`))
	assert.Error(t, err)
}

func TestMessageMarshal_ErrorWins(t *testing.T) {
	result := json.RawMessage(`{"ok":true}`)
	msg := &Message{
		Result: &result,
		Error:  &JSONRPCError{Code: JSONRPCErrorInternal, Message: "boom"},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "error")
	assert.NotContains(t, decoded, "result")
}
