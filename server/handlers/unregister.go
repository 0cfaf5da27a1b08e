package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nomis52/signup/board"
	"github.com/nomis52/signup/render"
)

// UnregisterConfirmHandler asks the user to confirm removing a participant.
type UnregisterConfirmHandler struct {
	logger    *slog.Logger
	pages     PageRenderer
	config    ConfigProvider
	csrfField CSRFField
}

// NewUnregisterConfirmHandler creates a new UnregisterConfirmHandler.
func NewUnregisterConfirmHandler(logger *slog.Logger, pages PageRenderer, config ConfigProvider, field CSRFField) *UnregisterConfirmHandler {
	return &UnregisterConfirmHandler{
		logger:    logger,
		pages:     pages,
		config:    config,
		csrfField: field,
	}
}

// ServeHTTP implements http.Handler.
func (h *UnregisterConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, email := q.Get("activity"), q.Get("email")
	if name == "" || email == "" {
		redirectHome(w, r)
		return
	}

	ui := h.config.Config().UI
	page := render.ConfirmPage{
		Title:     ui.Title,
		Footer:    ui.Footer,
		Prompt:    board.UnregisterPrompt(name, email),
		Activity:  name,
		Email:     email,
		CSRFField: csrfField(h.csrfField, r),
	}
	writeHTML(w, h.logger, func(buf *bytes.Buffer) error {
		return h.pages.Confirm(buf, page)
	})
}

// UnregisterHandler removes a participant. Nothing is sent to the API unless
// the form carries confirm=yes.
type UnregisterHandler struct {
	logger *slog.Logger
	boards BoardProvider
}

// NewUnregisterHandler creates a new UnregisterHandler.
func NewUnregisterHandler(logger *slog.Logger, boards BoardProvider) *UnregisterHandler {
	return &UnregisterHandler{
		logger: logger,
		boards: boards,
	}
}

// ServeHTTP implements http.Handler.
func (h *UnregisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	name := r.PostForm.Get("activity")
	email := r.PostForm.Get("email")
	if name == "" || email == "" {
		redirectHome(w, r)
		return
	}
	confirmed := r.PostForm.Get("confirm") == "yes"

	b := h.boards.Board(w, r)
	err := b.Unregister(r.Context(), name, email, board.ConfirmFunc(func(string) bool {
		return confirmed
	}))
	switch {
	case errors.Is(err, board.ErrCancelled):
		h.logger.Debug("unregister cancelled", "activity", name, "email", email)
	case err != nil:
		h.logger.Debug("unregister not completed", "activity", name, "email", email, "error", err)
	}
	redirectHome(w, r)
}
