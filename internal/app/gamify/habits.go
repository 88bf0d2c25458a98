package gamify

import (
	"strings"
	"time"

	"github.com/twinlab/twin/internal/domain"
)

// Outcome reports the reward side effects of a transition so callers
// can surface toasts and record metrics without diffing aggregates.
type Outcome struct {
	XPAwarded   int
	LeveledUp   bool
	NewLevel    int
	StreakBonus bool
	CapExceeded bool // action applied but XP withheld; warn the user
}

// NewUserState builds the aggregate for a fresh registration: zero XP,
// level 1, one welcome message, empty habits and plan.
func NewUserState(name, email, username string, now time.Time) domain.UserState {
	st := domain.UserState{
		Name:        name,
		Email:       email,
		Username:    username,
		Preferences: domain.DefaultPreferences(),
		Energy:      100,
		DayPlan:     domain.DayPlan{Date: domain.ISODate(now)},
		Messages: []domain.InboxMessage{{
			ID:      domain.NewMessageID(),
			Sender:  "inbox.sender.twin",
			Subject: "inbox.welcome.subject",
			Body:    "inbox.welcome.body",
			Date:    now,
			Type:    domain.MsgWelcome,
		}},
	}
	applyLevelFields(&st)
	return st
}

// CreateHabit appends a new habit and awards the creation reward.
// Creation XP is not subject to the daily cap.
func CreateHabit(st domain.UserState, title string, freq domain.Frequency, now time.Time) (domain.UserState, Outcome, error) {
	if strings.TrimSpace(title) == "" {
		return st, Outcome{}, domain.ErrEmptyTitle
	}
	if freq != domain.FreqDaily && freq != domain.FreqWeekly {
		return st, Outcome{}, domain.ErrInvalidFrequency
	}

	out := st.Clone()
	out.Habits = append(out.Habits, domain.Habit{
		ID:        domain.NewHabitID(),
		Title:     strings.TrimSpace(title),
		Frequency: freq,
		Category:  "productivity",
	})

	var oc Outcome
	oc.XPAwarded = CreateHabitXP
	leveled := addXP(&out, CreateHabitXP)
	if leveled {
		out.Energy = 100
		appendLevelUpMessage(&out, now)
	}
	oc.LeveledUp = leveled
	oc.NewLevel = out.TwinLevel
	return out, oc, nil
}

// DeleteHabit removes a habit. No XP side effect; irreversible.
func DeleteHabit(st domain.UserState, id string) (domain.UserState, error) {
	out := st.Clone()
	for i, h := range out.Habits {
		if h.ID == id {
			out.Habits = append(out.Habits[:i], out.Habits[i+1:]...)
			return out, nil
		}
	}
	return st, domain.ErrHabitNotFound
}

// ToggleHabit records today's completion for a habit. Completing twice
// on the same day is a no-op. The streak extends only when the last
// completion was exactly yesterday; any longer gap restarts at 1,
// which also covers the first completion ever.
func ToggleHabit(st domain.UserState, id string, now time.Time) (domain.UserState, Outcome, error) {
	habit, ok := st.FindHabit(id)
	if !ok {
		return st, Outcome{}, domain.ErrHabitNotFound
	}

	today := domain.ISODate(now)
	if habit.CompletedOn(today) {
		return st, Outcome{}, nil
	}
	yesterday := domain.ISODate(now.AddDate(0, 0, -1))

	out := st.Clone()
	var oc Outcome

	newStreak := 1
	if habit.LastCompletedDate() == yesterday {
		newStreak = habit.Streak + 1
	}
	for i := range out.Habits {
		if out.Habits[i].ID == id {
			out.Habits[i].Streak = newStreak
			out.Habits[i].CompletedDates = append(out.Habits[i].CompletedDates, today)
		}
	}

	if out.DailyHabitCount < MaxHabitsPerDay {
		oc.XPAwarded += CompleteHabitXP
	} else {
		oc.CapExceeded = true
	}

	// Streak bonus fires at exactly 3 and never again at 4+.
	if newStreak == 3 {
		oc.XPAwarded += StreakThreeDayXP
		oc.StreakBonus = true
		out.Messages = append(out.Messages, domain.InboxMessage{
			ID:      domain.NewMessageID(),
			Sender:  "inbox.sender.twin",
			Subject: "inbox.streak3.subject",
			Body:    "inbox.streak3.body",
			Date:    now,
			Type:    domain.MsgAchievement,
		})
	}

	if oc.XPAwarded > 0 && addXP(&out, oc.XPAwarded) {
		oc.LeveledUp = true
		out.Energy = 100
		appendLevelUpMessage(&out, now)
	} else {
		out.Energy = min(100, out.Energy+2)
	}
	oc.NewLevel = out.TwinLevel

	// Counts even past the cap, so the overshoot stays visible.
	out.DailyHabitCount++

	return out, oc, nil
}

// addXP adds to the XP total and refreshes the derived level fields.
// Returns true when the level increased.
func addXP(st *domain.UserState, amount int) bool {
	before := st.TwinLevel
	st.XP += amount
	applyLevelFields(st)
	return st.TwinLevel > before
}

// applyLevelFields recomputes the derived fields from st.XP.
func applyLevelFields(st *domain.UserState) {
	info := LevelFromXP(st.XP)
	st.TwinLevel = info.Level
	st.LevelTitle = info.Title
	st.XPToNextLevel = ThresholdForLevel(info.Level)
}

func appendLevelUpMessage(st *domain.UserState, now time.Time) {
	st.Messages = append(st.Messages, domain.InboxMessage{
		ID:      domain.NewMessageID(),
		Sender:  "inbox.sender.twin",
		Subject: "inbox.levelup.subject",
		Body:    "inbox.levelup.body",
		Date:    now,
		Type:    domain.MsgAchievement,
	})
}
