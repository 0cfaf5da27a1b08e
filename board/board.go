// Package board implements the activity signup board: the rendered list of
// activities with their participants, the signup form, and the message
// banner, together with the operations that change them.
//
// A Board is the state one user sees. Refresh rebuilds it from the API;
// Signup and Unregister call the API, report the outcome on the banner and
// refresh after a success. Renderers read a View snapshot and never touch
// the Board directly.
//
// Network I/O happens outside the Board's lock, so concurrent refreshes are
// not ordered: whichever response arrives last is what the board shows.
package board

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nomis52/signup/activity"
	"github.com/nomis52/signup/banner"
	"github.com/nomis52/signup/clients/activityclient"
	"github.com/nomis52/signup/metrics"
)

// Fixed texts shown to the user.
const (
	PlaceholderOption    = "-- Select an activity --"
	NoParticipantsText   = "No participants yet"
	LoadFailedText       = "Failed to load activities. Please try again later."
	MissingFieldsText    = "Please enter an email and select an activity."
	SignupFallback       = "An error occurred"
	SignupFailedText     = "Failed to sign up. Please try again."
	UnregisterFallback   = "Failed to unregister"
	UnregisterFailedText = "Failed to unregister. Please try again."
)

// ErrCancelled is returned by Unregister when the user declines the confirmation.
var ErrCancelled = errors.New("unregister cancelled")

// ErrMissingFields is returned by Signup when the email or activity is empty.
var ErrMissingFields = errors.New("email and activity are required")

// Client is the subset of the activities API the board uses.
type Client interface {
	List(ctx context.Context) (activity.Catalog, error)
	Signup(ctx context.Context, name, email string) (string, error)
	Unregister(ctx context.Context, name, email string) (string, error)
}

// Confirmer asks the user to confirm an action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Board is safe for concurrent use.
type Board struct {
	client  Client
	banner  *banner.Banner
	logger  *slog.Logger
	metrics *metrics.BoardMetrics

	mu         sync.Mutex
	cards      []Card
	options    []Option
	loaded     bool
	loadFailed bool
	form       Form
	// rendered is set once an action has already brought the board up to
	// date, so the next page load can show it without fetching again.
	rendered bool
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithLogger sets the logger used to report failures.
func WithLogger(logger *slog.Logger) BoardOption {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithMetrics records fetch and mutation outcomes.
func WithMetrics(m *metrics.BoardMetrics) BoardOption {
	return func(b *Board) {
		b.metrics = m
	}
}

// WithBanner replaces the default banner.
func WithBanner(bn *banner.Banner) BoardOption {
	return func(b *Board) {
		b.banner = bn
	}
}

// New creates an empty board backed by client.
func New(client Client, opts ...BoardOption) *Board {
	b := &Board{
		client:  client,
		logger:  slog.Default(),
		options: []Option{placeholder()},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.banner == nil {
		b.banner = banner.New()
	}
	return b
}

// Refresh fetches the activities and rebuilds the list and the dropdown.
// On failure the list is replaced by LoadFailedText and the dropdown is
// left as it was.
func (b *Board) Refresh(ctx context.Context) error {
	catalog, err := b.client.List(ctx)
	if err != nil {
		b.metrics.ObserveFetch(outcomeOf(err))
		b.logger.Error("failed to fetch activities", "error", err)

		b.mu.Lock()
		b.cards = nil
		b.loaded = true
		b.loadFailed = true
		b.mu.Unlock()
		return err
	}
	b.metrics.ObserveFetch(metrics.OutcomeSuccess)
	b.metrics.ObserveCatalog(catalog)

	cards, options := build(catalog)

	b.mu.Lock()
	b.cards = cards
	b.options = options
	b.loaded = true
	b.loadFailed = false
	b.mu.Unlock()
	return nil
}

// Signup registers email for the named activity. On success the banner
// shows the server message, the form is cleared and the board is refreshed
// once. On failure the form keeps its values and no refresh happens.
func (b *Board) Signup(ctx context.Context, email, name string) error {
	b.mu.Lock()
	b.form = Form{Email: email, Activity: name}
	b.rendered = true
	b.mu.Unlock()

	if email == "" || name == "" {
		b.banner.Error(MissingFieldsText)
		return ErrMissingFields
	}

	msg, err := b.client.Signup(ctx, name, email)
	if err != nil {
		b.metrics.ObserveSignup(outcomeOf(err))
		b.reportFailure(err, SignupFallback, SignupFailedText, "failed to sign up", name, email)
		return err
	}

	b.metrics.ObserveSignup(metrics.OutcomeSuccess)
	b.logger.Info("signed up", "activity", name, "email", email)
	b.banner.Success(msg)

	b.mu.Lock()
	b.form = Form{}
	b.mu.Unlock()

	b.Refresh(ctx)
	return nil
}

// Unregister removes email from the named activity after the user confirms.
// Declining returns ErrCancelled without calling the API. On success the
// banner shows the server message and the board is refreshed once.
func (b *Board) Unregister(ctx context.Context, name, email string, confirm Confirmer) error {
	if !confirm.Confirm(UnregisterPrompt(name, email)) {
		return ErrCancelled
	}

	b.mu.Lock()
	b.rendered = true
	b.mu.Unlock()

	msg, err := b.client.Unregister(ctx, name, email)
	if err != nil {
		b.metrics.ObserveUnregister(outcomeOf(err))
		b.reportFailure(err, UnregisterFallback, UnregisterFailedText, "failed to unregister", name, email)
		return err
	}

	b.metrics.ObserveUnregister(metrics.OutcomeSuccess)
	b.logger.Info("unregistered", "activity", name, "email", email)
	b.banner.Success(msg)

	b.Refresh(ctx)
	return nil
}

// UnregisterPrompt is the confirmation question for removing email from name.
func UnregisterPrompt(name, email string) string {
	return "Unregister " + email + " from " + name + "?"
}

// PageLoad returns the view for a fresh page. It fetches the activities
// unless an action has just brought an already loaded board up to date.
func (b *Board) PageLoad(ctx context.Context) View {
	b.mu.Lock()
	current := b.rendered && b.loaded
	b.rendered = false
	b.mu.Unlock()

	if !current {
		b.Refresh(ctx)
	}
	return b.View()
}

// View returns a snapshot of the board for rendering.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	return View{
		Cards:      cloneCards(b.cards),
		Options:    append([]Option(nil), b.options...),
		Loaded:     b.loaded,
		LoadFailed: b.loadFailed,
		Form:       b.form,
		Banner:     b.banner.State(),
	}
}

// Close stops the banner's pending timers.
func (b *Board) Close() {
	b.banner.Stop()
}

// reportFailure shows the API detail (or fallback) for rejections and the
// generic text for transport failures, which are also logged.
func (b *Board) reportFailure(err error, fallback, failedText, logMsg, name, email string) {
	var apiErr *activityclient.APIError
	if errors.As(err, &apiErr) {
		b.banner.Error(apiErr.DetailOr(fallback))
		return
	}
	b.logger.Error(logMsg, "activity", name, "email", email, "error", err)
	b.banner.Error(failedText)
}

func outcomeOf(err error) metrics.Outcome {
	var apiErr *activityclient.APIError
	if errors.As(err, &apiErr) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}
