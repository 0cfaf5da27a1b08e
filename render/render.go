// Package render turns a board.View into HTML pages for the web frontend and
// into plain text for the command line client.
//
// HTML output goes through html/template, so every activity name,
// description, schedule and email is escaped for the context it lands in.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/nomis52/signup/board"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

const (
	DefaultTitle  = "Activity Signup"
	DefaultFooter = "Extracurricular activities"
)

// BoardPage is the data for the main page.
type BoardPage struct {
	Title     string
	Footer    string
	View      board.View
	CSRFField template.HTML
}

// ConfirmPage is the data for the unregister confirmation page.
type ConfirmPage struct {
	Title     string
	Footer    string
	Prompt    string
	Activity  string
	Email     string
	CSRFField template.HTML
}

// HTML renders the web pages.
type HTML struct {
	tmpl *template.Template
}

// NewHTML parses the embedded templates.
func NewHTML() (*HTML, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"loadFailedText":     func() string { return board.LoadFailedText },
		"noParticipantsText": func() string { return board.NoParticipantsText },
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &HTML{tmpl: tmpl}, nil
}

// Board writes the main page.
func (h *HTML) Board(w io.Writer, p BoardPage) error {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Footer == "" {
		p.Footer = DefaultFooter
	}
	return h.tmpl.ExecuteTemplate(w, "board", p)
}

// Confirm writes the unregister confirmation page.
func (h *HTML) Confirm(w io.Writer, p ConfirmPage) error {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Footer == "" {
		p.Footer = DefaultFooter
	}
	if p.Prompt == "" {
		p.Prompt = board.UnregisterPrompt(p.Activity, p.Email)
	}
	return h.tmpl.ExecuteTemplate(w, "confirm", p)
}

// Static returns the stylesheet and other static assets.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	return sub
}
