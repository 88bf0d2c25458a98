// Package persist is the persistence boundary: a remote blob store
// consumed over HTTP, a local SQLite cache it falls back to, and the
// debounced saver that coalesces bursts of edits into one write.
package persist

import (
	"encoding/json"
	"fmt"

	"github.com/twinlab/twin/internal/domain"
)

// Payload is the wire shape at the store boundary. Habits and the
// active day plan travel as siblings of user, not nested inside it.
type Payload struct {
	User    domain.UserState `json:"user"`
	Habits  []domain.Habit   `json:"habits"`
	DayPlan *domain.DayPlan  `json:"dayPlan,omitempty"`
}

// Encode splits an aggregate into the sibling wire shape.
func Encode(st domain.UserState) ([]byte, error) {
	user := st.Clone()
	habits := user.Habits
	plan := user.DayPlan
	user.Habits = nil
	user.DayPlan = domain.DayPlan{}

	if habits == nil {
		habits = []domain.Habit{}
	}
	return json.Marshal(Payload{User: user, Habits: habits, DayPlan: &plan})
}

// Decode normalizes a payload back into one canonical UserState.
// Older blobs nest habits/dayPlan under user; sibling fields win when
// both are present. A payload without a user name is rejected outright
// rather than risking a partially merged aggregate.
func Decode(raw []byte) (domain.UserState, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.UserState{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	st := p.User
	if p.Habits != nil {
		st.Habits = p.Habits
	}
	if p.DayPlan != nil {
		st.DayPlan = *p.DayPlan
	}

	if st.Name == "" {
		return domain.UserState{}, domain.ErrMalformedPayload
	}
	if st.Preferences.Language == "" {
		st.Preferences.Language = "en"
	}
	return st, nil
}
