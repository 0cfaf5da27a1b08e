package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ConfigHandler serves the running configuration as YAML with secrets
// redacted.
type ConfigHandler struct {
	logger   *slog.Logger
	provider ConfigProvider
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(logger *slog.Logger, provider ConfigProvider) *ConfigHandler {
	return &ConfigHandler{
		logger:   logger,
		provider: provider,
	}
}

// ServeHTTP implements http.Handler.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(h.provider.Config().Redacted()); err != nil {
		h.logger.Error("failed to encode YAML response", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to encode config"})
		return
	}

	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
