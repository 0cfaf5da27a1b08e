// Package activity defines the activity data model shared by the API client,
// the board and the renderers.
//
// The upstream API returns activities as a JSON object keyed by activity
// name. Catalog decodes that object into an ordered slice so activities are
// shown in the order the API lists them.
package activity

// Activity is a schedulable class or session with a capacity and a list of
// registered participants.
type Activity struct {
	// Name is the unique key of the activity. It is carried by the enclosing
	// JSON object key, not by the activity body.
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft returns the remaining capacity of the activity.
// The result is negative when the activity is over-subscribed.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - len(a.Participants)
}

// HasParticipants reports whether anyone is registered.
func (a Activity) HasParticipants() bool {
	return len(a.Participants) > 0
}
