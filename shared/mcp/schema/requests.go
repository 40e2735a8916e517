package schema

import (
	"encoding/json"
)

// RequestID is a JSON-RPC request identifier. The wire value may be a string
// or a number, so it is kept as the decoded interface value.
type RequestID struct {
	Value interface{}
}

func (id *RequestID) UnmarshalJSON(data []byte) error {
	var i interface{}
	if err := json.Unmarshal(data, &i); err != nil {
		return err
	}
	id.Value = i
	return nil
}

func (id *RequestID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Value)
}

func RequestID_FromUInt64(value uint64) RequestID {
	return RequestID{Value: value}
}

func RequestID_FromString(value string) RequestID {
	return RequestID{Value: value}
}

func (id *RequestID) String() string {
	if id == nil || id.Value == nil {
		return "nil"
	}
	bytes, err := json.Marshal(id.Value)
	if err != nil {
		return err.Error()
	}
	return string(bytes)
}

func (id *RequestID) IsEmpty() bool {
	return id == nil || id.Value == nil
}

// PingRequest checks if the other party is alive.
// A ping, issued by either the server or the client.
type PingRequest struct {
	Method string                 `json:"method"`           // const: "ping"
	Params map[string]interface{} `json:"params,omitempty"` // Allows for _meta field
}

// CancelledNotification indicates cancellation of a previously-issued request.
type CancelledNotification struct {
	Method string                      `json:"method"` // const: "notifications/cancelled"
	Params CancelledNotificationParams `json:"params"`
}

// CancelledNotificationParams contains parameters for cancellation notifications.
type CancelledNotificationParams struct {
	Reason    string    `json:"reason,omitempty"` // Optional reason for cancellation
	RequestID RequestID `json:"requestId"`        // The ID of the request to cancel
}
