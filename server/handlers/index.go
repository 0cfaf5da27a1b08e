package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/nomis52/signup/render"
)

// IndexHandler serves the board page. Visitors without a session see a
// freshly fetched board that is discarded after rendering.
type IndexHandler struct {
	logger    *slog.Logger
	boards    BoardProvider
	pages     PageRenderer
	config    ConfigProvider
	csrfField CSRFField
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(logger *slog.Logger, boards BoardProvider, pages PageRenderer, config ConfigProvider, field CSRFField) *IndexHandler {
	return &IndexHandler{
		logger:    logger,
		boards:    boards,
		pages:     pages,
		config:    config,
		csrfField: field,
	}
}

// ServeHTTP implements http.Handler.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, ok := h.boards.Existing(r)
	if !ok {
		b = h.boards.Transient()
		defer b.Close()
	}
	view := b.PageLoad(r.Context())

	ui := h.config.Config().UI
	page := render.BoardPage{
		Title:     ui.Title,
		Footer:    ui.Footer,
		View:      view,
		CSRFField: csrfField(h.csrfField, r),
	}
	writeHTML(w, h.logger, func(buf *bytes.Buffer) error {
		return h.pages.Board(buf, page)
	})
}
