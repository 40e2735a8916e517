package capability

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/morim3/mcp-adobe-premiere/server/mcp"
	"github.com/morim3/mcp-adobe-premiere/shared"
	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"github.com/morim3/mcp-adobe-premiere/shared/mcp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	manager *mcp.Manager
	session shared.ISession
	output  <-chan *shared.Message
	nextID  uint64
}

func newTestEnv(t *testing.T, extraCaps ...shared.IServerCapability) *testEnv {
	t.Helper()

	cfg := config.NewInternalConfig()
	cfg.ServerNameValue = "test-server"
	cfg.ServerVersionValue = "0.1.0"

	manager, err := mcp.NewManager(zap.NewNop(), cfg)
	require.NoError(t, err)

	caps := append([]shared.IServerCapability{NewBase(zap.NewNop(), manager)}, extraCaps...)
	manager.AddCapability(caps...)

	session := manager.CreateSession("tester", nil)
	output, acquired := session.AcquireOutput()
	require.True(t, acquired)

	t.Cleanup(func() {
		session.ReleaseOutput()
		manager.CloseAllSessions()
	})

	return &testEnv{manager: manager, session: session, output: output}
}

// sendRequest queues a request and waits for its response.
func (e *testEnv) sendRequest(t *testing.T, method string, params interface{}) *shared.Message {
	t.Helper()

	e.nextID++
	id := schema.RequestID_FromUInt64(e.nextID)

	var rawParams *json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		raw := json.RawMessage(data)
		rawParams = &raw
	}

	msg := &shared.Message{
		ID:      &id,
		Method:  &method,
		Params:  rawParams,
		Session: e.session,
	}
	require.NoError(t, e.session.Input().Put(msg))

	select {
	case resp := <-e.output:
		require.NotNil(t, resp.ID)
		assert.Equal(t, id.String(), resp.ID.String())
		return resp
	case <-time.After(2 * time.Second):
		t.Fatalf("no response for %s", method)
		return nil
	}
}

func (e *testEnv) sendNotification(t *testing.T, method string) {
	t.Helper()
	msg := &shared.Message{
		Method:  &method,
		Session: e.session,
	}
	require.NoError(t, e.session.Input().Put(msg))
}

func (e *testEnv) handshake(t *testing.T, requestedVersion string) schema.InitializeResult {
	t.Helper()

	resp := e.sendRequest(t, "initialize", schema.InitializeRequestParams{
		ProtocolVersion: requestedVersion,
		ClientInfo:      schema.Implementation{Name: "test-client", Version: "1.0"},
	})
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Result)

	var result schema.InitializeResult
	require.NoError(t, json.Unmarshal(*resp.Result, &result))

	e.sendNotification(t, "notifications/initialized")
	require.Eventually(t, func() bool {
		return e.session.GetStatus() == shared.StatusConnected
	}, time.Second, 5*time.Millisecond)

	return result
}

func TestInitialize_Handshake(t *testing.T) {
	env := newTestEnv(t)

	result := env.handshake(t, schema.PROTOCOL_VERSION)
	assert.Equal(t, schema.PROTOCOL_VERSION, result.ProtocolVersion)
	assert.Equal(t, "test-server", result.ServerInfo.Name)
	assert.Equal(t, schema.PROTOCOL_VERSION, env.session.GetNegotiatedVersion())
}

func TestInitialize_BackCompatVersion(t *testing.T) {
	env := newTestEnv(t)

	result := env.handshake(t, "2024-11-05")
	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
}

func TestInitialize_UnsupportedVersionFallsBack(t *testing.T) {
	env := newTestEnv(t)

	resp := env.sendRequest(t, "initialize", schema.InitializeRequestParams{
		ProtocolVersion: "1999-12-31",
		ClientInfo:      schema.Implementation{Name: "old-client", Version: "0.1"},
	})
	require.Nil(t, resp.Error)

	var result schema.InitializeResult
	require.NoError(t, json.Unmarshal(*resp.Result, &result))
	assert.Equal(t, schema.PROTOCOL_VERSION, result.ProtocolVersion)
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	env.handshake(t, schema.PROTOCOL_VERSION)

	resp := env.sendRequest(t, "ping", nil)
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Result)
	assert.JSONEq(t, `{}`, string(*resp.Result))
}

func TestTools_ListAndCall(t *testing.T) {
	toolsCap := NewToolsCapability(nil, zap.NewNop())
	env := newTestEnv(t, toolsCap)

	require.NoError(t, toolsCap.AddTool(
		"echo",
		"Echoes its arguments back",
		&schema.JSONSchemaProperty{Type: "object"},
		nil,
		func(msg *shared.Message, args schema.Arguments) (*schema.Meta, []schema.Content, error) {
			text, _ := args["text"].(string)
			return nil, schema.NewTextContent(text), nil
		},
	))

	env.handshake(t, schema.PROTOCOL_VERSION)

	listResp := env.sendRequest(t, "tools/list", schema.ListToolsRequestParams{})
	require.Nil(t, listResp.Error)

	var listResult schema.ListToolsResult
	require.NoError(t, json.Unmarshal(*listResp.Result, &listResult))
	require.Len(t, listResult.Tools, 1)
	assert.Equal(t, "echo", listResult.Tools[0].Name)

	callResp := env.sendRequest(t, "tools/call", schema.CallToolRequestParams{
		Name:      "echo",
		Arguments: schema.Arguments{"text": "hello"},
	})
	require.Nil(t, callResp.Error)

	var callResult schema.CallToolResult
	require.NoError(t, json.Unmarshal(*callResp.Result, &callResult))
	assert.False(t, callResult.IsError)
	require.Len(t, callResult.Content, 1)
	assert.Equal(t, "hello", *callResult.Content[0].Text)
}

func TestTools_CallUnknownTool(t *testing.T) {
	toolsCap := NewToolsCapability(nil, zap.NewNop())
	env := newTestEnv(t, toolsCap)
	env.handshake(t, schema.PROTOCOL_VERSION)

	resp := env.sendRequest(t, "tools/call", schema.CallToolRequestParams{
		Name:      "missing",
		Arguments: schema.Arguments{},
	})
	require.NotNil(t, resp.Error)
}

func TestTools_HandlerErrorBecomesIsError(t *testing.T) {
	toolsCap := NewToolsCapability(nil, zap.NewNop())
	env := newTestEnv(t, toolsCap)

	require.NoError(t, toolsCap.AddTool(
		"fail",
		"Always fails",
		nil,
		nil,
		func(msg *shared.Message, args schema.Arguments) (*schema.Meta, []schema.Content, error) {
			return nil, schema.NewTextContent("it broke"), assert.AnError
		},
	))

	env.handshake(t, schema.PROTOCOL_VERSION)

	resp := env.sendRequest(t, "tools/call", schema.CallToolRequestParams{
		Name:      "fail",
		Arguments: schema.Arguments{},
	})
	require.Nil(t, resp.Error, "tool failures must not be JSON-RPC errors")

	var callResult schema.CallToolResult
	require.NoError(t, json.Unmarshal(*resp.Result, &callResult))
	assert.True(t, callResult.IsError)
}
