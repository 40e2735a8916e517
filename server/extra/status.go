package extra

import (
	"encoding/json"
	"net/http"

	"github.com/morim3/mcp-adobe-premiere/shared/config"
	"go.uber.org/zap"
)

// PanelReporter reports whether a Premiere panel is currently attached to the
// bridge.
type PanelReporter interface {
	PanelConnected() bool
}

// StatusResponse represents the response structure for the status endpoint
type StatusResponse struct {
	Config string `json:"config"`
	Panel  string `json:"panel"`
}

// StatusHandler creates an HTTP handler for checking system status
func StatusHandler(cfg config.IConfig, panel PanelReporter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlerLogger := logger.With(zap.String("handler", "StatusHandler"))
		w.Header().Set("Content-Type", "application/json")

		// Always return 200 status code
		w.WriteHeader(http.StatusOK)

		response := StatusResponse{
			Config: "none",
			Panel:  "none",
		}

		if err := cfg.Status(r.Context()); err != nil {
			handlerLogger.Error("Failed to get config status", zap.Error(err))
			response.Config = "error"
		} else {
			response.Config = "ok"
		}

		if panel != nil {
			if panel.PanelConnected() {
				response.Panel = "connected"
			} else {
				response.Panel = "disconnected"
			}
		}

		json.NewEncoder(w).Encode(response)
	}
}
