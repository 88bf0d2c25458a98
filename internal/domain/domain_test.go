package domain_test

import (
	"testing"
	"time"

	"github.com/twinlab/twin/internal/domain"
)

func TestISODate(t *testing.T) {
	at := time.Date(2025, 7, 3, 23, 59, 0, 0, time.UTC)
	if got := domain.ISODate(at); got != "2025-07-03" {
		t.Errorf("ISODate = %q", got)
	}
}

func TestHabit_LastCompletedDate(t *testing.T) {
	h := domain.Habit{CompletedDates: []string{"2025-07-02", "2025-06-30", "2025-07-01"}}
	if got := h.LastCompletedDate(); got != "2025-07-02" {
		t.Errorf("expected most recent date, got %q", got)
	}

	empty := domain.Habit{}
	if got := empty.LastCompletedDate(); got != "" {
		t.Errorf("expected empty for never-completed, got %q", got)
	}
}

func TestHabit_CloneIndependent(t *testing.T) {
	h := domain.Habit{ID: "habit-1", CompletedDates: []string{"2025-07-01"}}
	c := h.Clone()
	c.CompletedDates[0] = "2025-07-09"
	if h.CompletedDates[0] != "2025-07-01" {
		t.Error("clone shares the completion list")
	}
}

func TestValidHHMM(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, s := range valid {
		if !domain.ValidHHMM(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	invalid := []string{"24:00", "9:30", "09:60", "0930", "ab:cd", ""}
	for _, s := range invalid {
		if domain.ValidHHMM(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestDayPlan_InsertPlannedKeepsOrder(t *testing.T) {
	var p domain.DayPlan
	p = p.InsertPlanned(domain.TimeBlock{ID: "b", StartTime: "12:00"})
	p = p.InsertPlanned(domain.TimeBlock{ID: "a", StartTime: "09:00"})
	p = p.InsertPlanned(domain.TimeBlock{ID: "c", StartTime: "12:00"}) // tie keeps insertion order
	p = p.InsertPlanned(domain.TimeBlock{ID: "d", StartTime: "18:00"})

	got := ""
	for _, b := range p.PlannedBlocks {
		got += b.ID
	}
	if got != "abcd" {
		t.Errorf("unexpected order %q", got)
	}
}

func TestUserState_CloneDeep(t *testing.T) {
	st := domain.UserState{
		Name:   "Ada",
		Habits: []domain.Habit{{ID: "habit-1", CompletedDates: []string{"2025-07-01"}}},
		DayPlan: domain.DayPlan{
			PlannedBlocks: []domain.TimeBlock{{ID: "block-1"}},
		},
		Messages:   []domain.InboxMessage{{ID: "msg-1"}},
		HealthData: map[string]domain.HealthSample{"2025-07-01": {Steps: 100}},
	}

	c := st.Clone()
	c.Habits[0].CompletedDates[0] = "mutated"
	c.DayPlan.PlannedBlocks[0].ID = "mutated"
	c.Messages[0].Read = true
	c.HealthData["2025-07-01"] = domain.HealthSample{Steps: 999}

	if st.Habits[0].CompletedDates[0] != "2025-07-01" {
		t.Error("habit completions shared between clones")
	}
	if st.DayPlan.PlannedBlocks[0].ID != "block-1" {
		t.Error("plan blocks shared between clones")
	}
	if st.Messages[0].Read {
		t.Error("messages shared between clones")
	}
	if st.HealthData["2025-07-01"].Steps != 100 {
		t.Error("health map shared between clones")
	}
}

func TestUserState_UnreadCount(t *testing.T) {
	st := domain.UserState{Messages: []domain.InboxMessage{
		{ID: "1", Read: true},
		{ID: "2"},
		{ID: "3"},
	}}
	if got := st.UnreadCount(); got != 2 {
		t.Errorf("expected 2 unread, got %d", got)
	}
}
