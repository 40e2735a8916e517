package validators

import (
	"fmt"
	"sync"

	"github.com/morim3/mcp-adobe-premiere/shared"
)

// MethodValidator validates that the method in a message exists in the MCP specification
type MethodValidator struct {
	validMethods map[string]bool
	mu           sync.RWMutex
}

// NewMethodValidator creates a new method validator
func NewMethodValidator() *MethodValidator {
	v := &MethodValidator{
		validMethods: map[string]bool{
			// Client Requests
			"initialize": true,
			"ping":       true,
			"tools/list": true,
			"tools/call": true,

			// Notifications from the client
			"notifications/ping":        true,
			"notifications/initialized": true,
			"notifications/cancelled":   true,
		},
	}

	return v
}

// Validate implements the MessageValidator interface
func (v *MethodValidator) Validate(msg *shared.Message) error {
	if msg.Method != nil {
		v.mu.RLock()
		valid := v.validMethods[*msg.Method]
		v.mu.RUnlock()

		if !valid {
			return fmt.Errorf("invalid method: %s", *msg.Method)
		}
	} else if msg.ID.IsEmpty() {
		return fmt.Errorf("method and id is empty")
	}
	return nil
}
