package board

import (
	"github.com/nomis52/signup/activity"
	"github.com/nomis52/signup/banner"
)

// View is an immutable snapshot of a board.
type View struct {
	Cards   []Card
	Options []Option
	// Loaded is false until the first fetch has completed.
	Loaded bool
	// LoadFailed replaces the list with LoadFailedText.
	LoadFailed bool
	Form       Form
	Banner     banner.State
}

// Card is one activity on the board.
type Card struct {
	Name         string
	Description  string
	Schedule     string
	SpotsLeft    int
	Participants []Participant
}

// Participant is one row of a card's participant list. It carries the
// activity so an unregister action can be built from the row alone.
type Participant struct {
	Email    string
	Activity string
}

// Option is one entry of the activity dropdown.
type Option struct {
	Value string
	Label string
}

// Form holds the values of the signup form.
type Form struct {
	Email    string
	Activity string
}

// Selected reports whether opt is the activity chosen in the form.
func (f Form) Selected(opt Option) bool {
	return opt.Value == f.Activity
}

func placeholder() Option {
	return Option{Value: "", Label: PlaceholderOption}
}

// build creates one card and one dropdown option per activity.
func build(c activity.Catalog) ([]Card, []Option) {
	cards := make([]Card, 0, len(c))
	options := make([]Option, 0, len(c)+1)
	options = append(options, placeholder())

	for _, a := range c {
		card := Card{
			Name:        a.Name,
			Description: a.Description,
			Schedule:    a.Schedule,
			SpotsLeft:   a.SpotsLeft(),
		}
		if a.HasParticipants() {
			card.Participants = make([]Participant, 0, len(a.Participants))
			for _, email := range a.Participants {
				card.Participants = append(card.Participants, Participant{Email: email, Activity: a.Name})
			}
		}
		cards = append(cards, card)
	}
	for _, name := range c.Names() {
		options = append(options, Option{Value: name, Label: name})
	}
	return cards, options
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = c
		out[i].Participants = append([]Participant(nil), c.Participants...)
	}
	return out
}
