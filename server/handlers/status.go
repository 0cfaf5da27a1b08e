package handlers

import "net/http"

// StatusHandler serves the server status as JSON.
type StatusHandler struct {
	provider StatusProvider
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(provider StatusProvider) *StatusHandler {
	return &StatusHandler{
		provider: provider,
	}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Status())
}
