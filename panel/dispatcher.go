package panel

import (
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/morim3/mcp-adobe-premiere/bridge"
	"github.com/morim3/mcp-adobe-premiere/panel/host"
	"go.uber.org/zap"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// ActionFunc executes one host operation. The payload is the instruction's
// data field; the returned value is serialized into the response envelope.
type ActionFunc func(data json.RawMessage) (interface{}, error)

// Dispatcher maps action names to host API wrappers and normalizes every
// outcome into a response envelope. Host errors and handler panics become
// failure envelopes; the connection never drops because an action misbehaved.
type Dispatcher struct {
	logger  *zap.Logger
	actions map[string]ActionFunc
}

func NewDispatcher(api host.API, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		logger:  logger.Named("dispatcher"),
		actions: make(map[string]ActionFunc),
	}
	registerProjectActions(d, api)
	registerSequenceActions(d, api)
	registerMediaActions(d, api)
	return d
}

func (d *Dispatcher) register(action string, fn ActionFunc) {
	d.actions[action] = fn
}

// Actions returns the registered action names, for logging and tests.
func (d *Dispatcher) Actions() []string {
	names := make([]string, 0, len(d.actions))
	for name := range d.actions {
		names = append(names, name)
	}
	return names
}

// Dispatch executes the named action and returns the response envelope to
// write back, echoing the correlation ID.
func (d *Dispatcher) Dispatch(id, action string, data json.RawMessage) (resp bridge.PanelResponse) {
	resp.ID = id

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Action handler panicked",
				zap.String("action", action),
				zap.Any("panic", r),
			)
			resp = bridge.PanelResponse{
				ID:    id,
				Error: fmt.Sprintf("internal error in action %s: %v", action, r),
			}
		}
	}()

	fn, ok := d.actions[action]
	if !ok {
		d.logger.Warn("Unknown action", zap.String("action", action))
		resp.Error = fmt.Sprintf("unknown action: %s", action)
		return resp
	}

	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	result, err := fn(data)
	if err != nil {
		d.logger.Debug("Action failed", zap.String("action", action), zap.Error(err))
		resp.Error = err.Error()
		return resp
	}

	raw, err := codec.Marshal(result)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to encode result of %s: %v", action, err)
		return resp
	}

	resp.Success = true
	resp.Result = raw
	return resp
}
