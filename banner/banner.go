// Package banner implements the transient message banner shown above the
// activity board.
//
// A Banner holds a single message. Show replaces the text and kind, makes
// the banner visible and schedules it to hide again after a fixed delay.
// Messages are not queued: every Show schedules its own hide, so the timer
// of an earlier message may hide a later one before its full delay has
// elapsed.
package banner

import (
	"sync"
	"time"
)

// DefaultHideAfter is how long a message stays visible.
const DefaultHideAfter = 5 * time.Second

// Kind is the style of a banner message.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// State is a snapshot of the banner for rendering.
type State struct {
	Text    string
	Kind    Kind
	Visible bool
}

// afterFunc schedules f after d and returns a function that cancels it.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Banner is safe for concurrent use.
type Banner struct {
	hideAfter time.Duration
	after     afterFunc

	mu      sync.Mutex
	state   State
	nextID  int
	pending map[int]func() bool
}

// Option configures a Banner.
type Option func(*Banner)

// WithHideAfter sets how long a message stays visible.
func WithHideAfter(d time.Duration) Option {
	return func(b *Banner) {
		if d > 0 {
			b.hideAfter = d
		}
	}
}

// New creates a hidden banner.
func New(opts ...Option) *Banner {
	b := &Banner{
		hideAfter: DefaultHideAfter,
		after:     timeAfterFunc,
		pending:   make(map[int]func() bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Show displays text with the given kind and schedules the banner to hide.
func (b *Banner) Show(text string, kind Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = State{Text: text, Kind: kind, Visible: true}

	id := b.nextID
	b.nextID++
	b.pending[id] = b.after(b.hideAfter, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.pending, id)
		b.state.Visible = false
	})
}

// Success shows a success message.
func (b *Banner) Success(text string) {
	b.Show(text, KindSuccess)
}

// Error shows an error message.
func (b *Banner) Error(text string) {
	b.Show(text, KindError)
}

// State returns the current banner state.
func (b *Banner) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stop cancels every pending hide timer. The banner keeps its current state.
func (b *Banner) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, stop := range b.pending {
		stop()
		delete(b.pending, id)
	}
}
