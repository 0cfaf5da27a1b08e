package handlers

import (
	"log/slog"
	"net/http"
)

// ReloadHandler reloads the configuration from disk and reports the
// activities API now in use along with any changes that wait for a restart.
// Existing sessions keep their boards and use the new API on their next
// request.
type ReloadHandler struct {
	logger   *slog.Logger
	reloader Reloader
}

// NewReloadHandler creates a new ReloadHandler.
func NewReloadHandler(logger *slog.Logger, reloader Reloader) *ReloadHandler {
	return &ReloadHandler{
		logger:   logger,
		reloader: reloader,
	}
}

// ServeHTTP implements http.Handler.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("remote_addr", r.RemoteAddr)
	logger.Info("reloading configuration")

	result, err := h.reloader.Reload()
	if err != nil {
		logger.Error("failed to reload configuration", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "failed to reload configuration: " + err.Error(),
		})
		return
	}

	logger.Info("configuration reloaded", "api", result.APIBaseURL, "restart_required", result.RestartRequired)
	writeJSON(w, http.StatusOK, result)
}
