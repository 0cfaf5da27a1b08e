package handlers

import (
	"log/slog"
	"net/http"
)

// SignupHandler handles the signup form. The outcome is shown on the
// session's banner and the browser is redirected back to the board.
type SignupHandler struct {
	logger *slog.Logger
	boards BoardProvider
}

// NewSignupHandler creates a new SignupHandler.
func NewSignupHandler(logger *slog.Logger, boards BoardProvider) *SignupHandler {
	return &SignupHandler{
		logger: logger,
		boards: boards,
	}
}

// ServeHTTP implements http.Handler.
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("email")
	name := r.PostForm.Get("activity")

	b := h.boards.Board(w, r)
	if err := b.Signup(r.Context(), email, name); err != nil {
		h.logger.Debug("signup not completed", "activity", name, "email", email, "error", err)
	}
	redirectHome(w, r)
}
