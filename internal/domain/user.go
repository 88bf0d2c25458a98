// Package domain holds the core types of the Twin companion.
// The user aggregate is a plain value: every gamified action produces a
// new UserState rather than mutating the old one, so components never
// share mutable substructure.
package domain

import "time"

// UserState is the consolidated record for one user: profile,
// preferences, XP/level, energy gauge, inbox, habits and the active
// day plan. It is created at registration and replaced wholesale by
// every transition.
type UserState struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`

	Preferences Preferences `json:"preferences"`

	XP            int    `json:"xp"`
	TwinLevel     int    `json:"twinLevel"`
	LevelTitle    string `json:"levelTitle"`
	XPToNextLevel int    `json:"xpToNextLevel"`

	// Energy is the persisted gauge nudged by rewards. It is distinct
	// from the stateless time-of-day energy score used for display.
	Energy int `json:"energy"`

	// Daily reward counters. There is no day-rollover hook that resets
	// them; only the XP grant is gated on these, never the action itself.
	DailyHabitCount  int  `json:"dailyHabitCount"`
	DailyBlockCount  int  `json:"dailyBlockCount"`
	DailyPlanCreated bool `json:"dailyPlanCreated"`

	Messages []InboxMessage `json:"messages"`
	Habits   []Habit        `json:"habits,omitempty"`
	DayPlan  DayPlan        `json:"dayPlan,omitzero"`

	// Keyed by ISO date ("2006-01-02").
	HealthData   map[string]HealthSample `json:"healthData,omitempty"`
	DailyContext map[string]DayContext   `json:"dailyContext,omitempty"`
}

// Preferences holds display and sync settings.
type Preferences struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
	HealthSync    bool   `json:"healthSync"`
}

// DefaultPreferences returns the settings a fresh account starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         "light",
		Language:      "en",
		Notifications: true,
	}
}

// ─── Inbox ──────────────────────────────────────────────────────────────────

// MessageType categorizes inbox messages.
type MessageType string

const (
	MsgAchievement MessageType = "achievement"
	MsgWelcome     MessageType = "welcome"
	MsgSystem      MessageType = "system"
)

// InboxMessage is a simulated inbox notification. Sender, subject and
// body may be literal strings or i18n catalog keys resolved at render
// time with {name}/{email} substitution.
type InboxMessage struct {
	ID      string      `json:"id"`
	Sender  string      `json:"sender"`
	Subject string      `json:"subject"`
	Body    string      `json:"body"`
	Date    time.Time   `json:"date"`
	Read    bool        `json:"read"`
	Type    MessageType `json:"type"`
}

// UnreadCount returns the number of unread inbox messages.
func (u UserState) UnreadCount() int {
	n := 0
	for _, m := range u.Messages {
		if !m.Read {
			n++
		}
	}
	return n
}

// FindHabit returns the habit with the given id, if present.
func (u UserState) FindHabit(id string) (Habit, bool) {
	for _, h := range u.Habits {
		if h.ID == id {
			return h, true
		}
	}
	return Habit{}, false
}

// Clone returns a deep copy of the aggregate. Transitions copy first,
// then modify, so the previous value stays intact.
func (u UserState) Clone() UserState {
	out := u
	out.Messages = append([]InboxMessage(nil), u.Messages...)
	out.Habits = make([]Habit, len(u.Habits))
	for i, h := range u.Habits {
		out.Habits[i] = h.Clone()
	}
	out.DayPlan = u.DayPlan.Clone()
	if u.HealthData != nil {
		out.HealthData = make(map[string]HealthSample, len(u.HealthData))
		for k, v := range u.HealthData {
			out.HealthData[k] = v
		}
	}
	if u.DailyContext != nil {
		out.DailyContext = make(map[string]DayContext, len(u.DailyContext))
		for k, v := range u.DailyContext {
			out.DailyContext[k] = v
		}
	}
	return out
}

// ISODate formats a time as the ISO date key used throughout the
// aggregate ("2006-01-02"). ISO dates compare lexicographically.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
