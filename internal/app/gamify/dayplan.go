package gamify

import (
	"strings"
	"time"

	"github.com/twinlab/twin/internal/domain"
)

// blockXP maps a block type to the XP its completion earns. A lookup
// table rather than a switch keeps the buckets auditable in one place.
var blockXP = map[domain.BlockType]int{
	domain.BlockWork:     CompleteWorkBlockXP,
	domain.BlockExercise: CompleteWorkBlockXP,
	domain.BlockHabit:    CompleteWorkBlockXP,
	domain.BlockRest:     CompleteRestBlockXP,
	domain.BlockSocial:   CompleteRestBlockXP,
	domain.BlockHealth:   CompleteRestBlockXP,
	domain.BlockOther:    TrackRealityXP,
}

// XPForBlockType returns the completion reward for a block type.
// Unknown types fall into the track-reality bucket.
func XPForBlockType(t domain.BlockType) int {
	if xp, ok := blockXP[t]; ok {
		return xp
	}
	return TrackRealityXP
}

// AddBlock inserts a block into the planned track, keeping it sorted
// by start time, and re-derives the actual track as a copy of the
// planned one. The re-derivation resets completion state on every
// actual block, not just the new one. The planning bonus is granted
// once, gated by DailyPlanCreated.
func AddBlock(st domain.UserState, title, start, end string, btype domain.BlockType, now time.Time) (domain.UserState, Outcome, error) {
	if strings.TrimSpace(title) == "" {
		return st, Outcome{}, domain.ErrEmptyTitle
	}
	if !domain.ValidHHMM(start) || !domain.ValidHHMM(end) {
		return st, Outcome{}, domain.ErrInvalidTime
	}
	if start >= end {
		return st, Outcome{}, domain.ErrInvalidTimeRange
	}
	if !domain.ValidBlockType(btype) {
		return st, Outcome{}, domain.ErrInvalidBlockType
	}

	out := st.Clone()
	out.DayPlan = out.DayPlan.InsertPlanned(domain.TimeBlock{
		ID:        domain.NewBlockID(),
		Title:     strings.TrimSpace(title),
		StartTime: start,
		EndTime:   end,
		Type:      btype,
	})
	out.DayPlan.ActualBlocks = cloneBlocks(out.DayPlan.PlannedBlocks)
	if out.DayPlan.Date == "" {
		out.DayPlan.Date = domain.ISODate(now)
	}

	oc := grantPlanBonus(&out)
	return out, oc, nil
}

// ApplyGeneratedPlan replaces both tracks wholesale with blocks from
// the suggestion service. Callers only reach this on a successful
// generation; a failed call leaves the previous plan untouched.
func ApplyGeneratedPlan(st domain.UserState, blocks []domain.TimeBlock, now time.Time) (domain.UserState, Outcome) {
	out := st.Clone()
	out.DayPlan = domain.DayPlan{Date: domain.ISODate(now)}
	for _, b := range blocks {
		b.IsCompleted = false
		out.DayPlan = out.DayPlan.InsertPlanned(b)
	}
	out.DayPlan.ActualBlocks = cloneBlocks(out.DayPlan.PlannedBlocks)

	return out, grantPlanBonus(&out)
}

// ToggleBlock flips completion on an actual-track block. Uncompleting
// never claws XP back and bypasses the cap check entirely. Completing
// past the cap still applies, with the XP withheld and a warning.
// A level-up resets the energy gauge to 100; there is no +2 nudge on
// this path.
func ToggleBlock(st domain.UserState, id string, now time.Time) (domain.UserState, Outcome, error) {
	block, ok := st.DayPlan.FindActual(id)
	if !ok {
		return st, Outcome{}, domain.ErrBlockNotFound
	}

	out := st.Clone()
	var oc Outcome

	if block.IsCompleted {
		setActualCompleted(&out.DayPlan, id, false)
		return out, oc, nil
	}

	if out.DailyBlockCount >= MaxBlocksPerDay {
		oc.CapExceeded = true
	} else {
		oc.XPAwarded = XPForBlockType(block.Type)
	}

	setActualCompleted(&out.DayPlan, id, true)
	out.DailyBlockCount++

	if oc.XPAwarded > 0 && addXP(&out, oc.XPAwarded) {
		oc.LeveledUp = true
		out.Energy = 100
	}
	oc.NewLevel = out.TwinLevel

	return out, oc, nil
}

// ClearPlan empties both tracks of the active plan. Destructive;
// the caller confirms with the user first.
func ClearPlan(st domain.UserState) domain.UserState {
	out := st.Clone()
	out.DayPlan.PlannedBlocks = nil
	out.DayPlan.ActualBlocks = nil
	return out
}

// DeleteBlock removes a block from both tracks by id.
func DeleteBlock(st domain.UserState, id string) (domain.UserState, error) {
	found := false
	out := st.Clone()
	out.DayPlan.PlannedBlocks = removeBlock(out.DayPlan.PlannedBlocks, id, &found)
	out.DayPlan.ActualBlocks = removeBlock(out.DayPlan.ActualBlocks, id, &found)
	if !found {
		return st, domain.ErrBlockNotFound
	}
	return out, nil
}

// grantPlanBonus awards the one-time planning reward when the
// DailyPlanCreated gate is still open.
func grantPlanBonus(st *domain.UserState) Outcome {
	var oc Outcome
	if !st.DailyPlanCreated {
		st.DailyPlanCreated = true
		oc.XPAwarded = PlanDayXP
		if addXP(st, PlanDayXP) {
			oc.LeveledUp = true
			st.Energy = 100
		}
	}
	oc.NewLevel = st.TwinLevel
	return oc
}

func setActualCompleted(p *domain.DayPlan, id string, completed bool) {
	for i := range p.ActualBlocks {
		if p.ActualBlocks[i].ID == id {
			p.ActualBlocks[i].IsCompleted = completed
		}
	}
}

func cloneBlocks(blocks []domain.TimeBlock) []domain.TimeBlock {
	out := make([]domain.TimeBlock, len(blocks))
	for i, b := range blocks {
		b.IsCompleted = false
		out[i] = b
	}
	return out
}

func removeBlock(blocks []domain.TimeBlock, id string, found *bool) []domain.TimeBlock {
	for i, b := range blocks {
		if b.ID == id {
			*found = true
			return append(blocks[:i], blocks[i+1:]...)
		}
	}
	return blocks
}
