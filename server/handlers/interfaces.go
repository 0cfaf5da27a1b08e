// Package handlers provides HTTP handlers for the signup web frontend.
//
// Each handler is in its own file and implements http.Handler.
// Handlers use interfaces to access server dependencies, avoiding
// circular imports.
package handlers

import (
	"html/template"
	"io"
	"net/http"

	"github.com/nomis52/signup/board"
	"github.com/nomis52/signup/config"
	"github.com/nomis52/signup/render"
	"github.com/nomis52/signup/server/types"
)

// ConfigProvider provides access to the current configuration.
type ConfigProvider interface {
	Config() *config.Config
}

// Reloader can reload its configuration.
type Reloader interface {
	Reload() (types.ReloadResult, error)
}

// BoardProvider hands out session boards. Board creates the session if
// needed; Existing never does. Transient boards belong to no session.
type BoardProvider interface {
	Board(w http.ResponseWriter, r *http.Request) *board.Board
	Existing(r *http.Request) (*board.Board, bool)
	Transient() *board.Board
}

// PageRenderer renders the HTML pages.
type PageRenderer interface {
	Board(w io.Writer, p render.BoardPage) error
	Confirm(w io.Writer, p render.ConfirmPage) error
}

// StatusProvider reports the server status.
type StatusProvider interface {
	Status() types.Status
}

// CSRFField returns the hidden form field carrying the request's CSRF token.
type CSRFField func(r *http.Request) template.HTML
