package schema

import (
	"encoding/json"
)

// PROTOCOL_VERSION specifies the version of the MCP protocol defined in this schema.
const PROTOCOL_VERSION = "2025-03-26"

// Implementation describes the name and version of an MCP implementation.
type Implementation struct {
	Name    string `json:"name"`    // Implementation name
	Version string `json:"version"` // Implementation version
}

type Capability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type CapabilityWithSubscribe struct {
	ListChanged bool `json:"listChanged,omitempty"`
	Subscribe   bool `json:"subscribe,omitempty"`
}

// ClientCapabilities describes capabilities a client may support.
type ClientCapabilities struct {
	Experimental map[string]json.RawMessage `json:"experimental,omitempty"` // Non-standard capabilities
	Roots        *Capability                `json:"roots,omitempty"`        // Present if client supports listing roots
	Sampling     *struct{}                  `json:"sampling,omitempty"`     // Present if client supports sampling from an LLM
}

// ServerCapabilities describes features the server supports.
type ServerCapabilities struct {
	Experimental map[string]json.RawMessage `json:"experimental,omitempty"` // Experimental, non-standard capabilities
	Logging      *struct{}                  `json:"logging,omitempty"`      // Present if the server supports sending log messages to the client
	Completions  *struct{}                  `json:"completions,omitempty"`  // Present if the server supports argument autocompletion suggestions
	Prompts      *Capability                `json:"prompts,omitempty"`      // Present if the server offers any prompt templates
	Resources    *CapabilityWithSubscribe   `json:"resources,omitempty"`    // Present if the server offers any resources to read
	Tools        *Capability                `json:"tools,omitempty"`        // Present if the server offers any tools to call
}

// InitializeRequestParams contains parameters for initialization.
type InitializeRequestParams struct {
	Capabilities    ClientCapabilities `json:"capabilities"`    // Client capabilities
	ClientInfo      Implementation     `json:"clientInfo"`      // Client implementation info
	ProtocolVersion string             `json:"protocolVersion"` // Latest supported protocol version
}

// InitializeResult is the server's response to initialization.
type InitializeResult struct {
	Meta            map[string]interface{} `json:"_meta,omitempty"`        // Reserved for metadata
	ProtocolVersion string                 `json:"protocolVersion"`        // Server's chosen protocol version
	Capabilities    ServerCapabilities     `json:"capabilities"`           // Server capabilities
	ServerInfo      Implementation         `json:"serverInfo"`             // Server implementation info
	Instructions    string                 `json:"instructions,omitempty"` // Instructions describing how to use the server and its features
}

// InitializeRequest is sent by the client to start initialization.
// This request is sent from the client to the server when it first connects.
type InitializeRequest struct {
	Method string                  `json:"method"` // const: "initialize"
	Params InitializeRequestParams `json:"params"`
}

// InitializedNotification informs the server that initialization is complete.
// This notification is sent from the client to the server after initialization has finished.
type InitializedNotification struct {
	Method string                 `json:"method"` // const: "notifications/initialized"
	Params map[string]interface{} `json:"params,omitempty"`
}
