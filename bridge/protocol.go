package bridge

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Instruction is the frame sent to the panel. The panel echoes the ID back in
// its response so the bridge can correlate them.
type Instruction struct {
	ID     string      `json:"id"`
	Action string      `json:"action"`
	Data   interface{} `json:"data,omitempty"`
}

// PanelResponse is the frame the panel sends back after executing an
// instruction. Exactly one of Result and Error is meaningful, selected by
// Success.
type PanelResponse struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}
