package domain

// Frequency is how often a habit is meant to recur.
type Frequency string

const (
	FreqDaily  Frequency = "daily"
	FreqWeekly Frequency = "weekly"
)

// Habit is a recurring practice the user tracks. CompletedDates holds
// ISO date strings and is logically a set; a date never appears twice.
type Habit struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Frequency      Frequency `json:"frequency"`
	Streak         int       `json:"streak"`
	CompletedDates []string  `json:"completedDates"`
	Category       string    `json:"category"`
}

// Clone returns a copy with its own completion list.
func (h Habit) Clone() Habit {
	out := h
	out.CompletedDates = append([]string(nil), h.CompletedDates...)
	return out
}

// LastCompletedDate returns the lexicographically greatest entry in
// CompletedDates, which for ISO dates is the most recent one.
// Returns "" when the habit has never been completed.
func (h Habit) LastCompletedDate() string {
	last := ""
	for _, d := range h.CompletedDates {
		if d > last {
			last = d
		}
	}
	return last
}

// CompletedOn reports whether the habit was completed on the given ISO date.
func (h Habit) CompletedOn(isoDate string) bool {
	for _, d := range h.CompletedDates {
		if d == isoDate {
			return true
		}
	}
	return false
}
