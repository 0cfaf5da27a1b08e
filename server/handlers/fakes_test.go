package handlers

import (
	"context"
	"html/template"
	"net/http"
	"sync"

	"github.com/nomis52/signup/activity"
	"github.com/nomis52/signup/board"
	"github.com/nomis52/signup/config"
)

// fakeClient is an in-memory activities API.
type fakeClient struct {
	mu            sync.Mutex
	catalog       activity.Catalog
	signupErr     error
	unregisterErr error

	lists       int
	signups     []string
	unregisters []string
}

func (f *fakeClient) List(ctx context.Context) (activity.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return f.catalog, nil
}

func (f *fakeClient) Signup(ctx context.Context, name, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signups = append(f.signups, name+"/"+email)
	if f.signupErr != nil {
		return "", f.signupErr
	}
	return "Signed up " + email + " for " + name, nil
}

func (f *fakeClient) Unregister(ctx context.Context, name, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregisters = append(f.unregisters, name+"/"+email)
	if f.unregisterErr != nil {
		return "", f.unregisterErr
	}
	return "Unregistered " + email + " from " + name, nil
}

func (f *fakeClient) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

// singleBoard hands every request the same board.
type singleBoard struct {
	board *board.Board
}

func (s *singleBoard) Board(w http.ResponseWriter, r *http.Request) *board.Board {
	return s.board
}

func (s *singleBoard) Existing(r *http.Request) (*board.Board, bool) {
	return s.board, true
}

func (s *singleBoard) Transient() *board.Board {
	return s.board
}

// noSessions has no sessions and counts the boards it creates.
type noSessions struct {
	client     *fakeClient
	created    int
	transients int
}

func (n *noSessions) Board(w http.ResponseWriter, r *http.Request) *board.Board {
	n.created++
	return board.New(n.client)
}

func (n *noSessions) Existing(r *http.Request) (*board.Board, bool) {
	return nil, false
}

func (n *noSessions) Transient() *board.Board {
	n.transients++
	return board.New(n.client)
}

type mockConfigProvider struct {
	config *config.Config
}

func (m *mockConfigProvider) Config() *config.Config {
	return m.config
}

func testConfig() *config.Config {
	cfg := &config.Config{API: config.APIConfig{BaseURL: "http://api.example.com"}}
	cfg.SetDefaults()
	return cfg
}

func fixedField(r *http.Request) template.HTML {
	return `<input type="hidden" name="gorilla.csrf.Token" value="test-token">`
}

func chessCatalog() activity.Catalog {
	return activity.Catalog{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 10,
			Participants:    []string{"a@x.com"},
		},
	}
}
