// Package gamify implements the Twin gamification engine: XP and
// levels, habit streaks, day-plan rewards, and the time-of-day energy
// model behind the avatar. All transitions are pure: they take a
// UserState value and return a new one, never touching storage.
package gamify

// XP rewards per action.
const (
	PlanDayXP           = 50
	CompleteWorkBlockXP = 15
	CompleteRestBlockXP = 5
	TrackRealityXP      = 2
	CreateHabitXP       = 10
	CompleteHabitXP     = 15
	StreakThreeDayXP    = 30

	// Defined but not wired to any trigger.
	StreakSevenDayXP = 70
	PerfectDayXP     = 100
)

// Daily reward caps. Actions past the cap still apply; only the XP
// grant is withheld. Nothing resets these counters at day rollover.
const (
	MaxBlocksPerDay = 12
	MaxHabitsPerDay = 8
)

// Level titles.
const (
	TitleNovice   = "Novice Twin"
	TitleMaster   = "Master Twin"
	TitleAscended = "Ascended Twin"
)

// LevelInfo is the derived view of a cumulative XP total.
type LevelInfo struct {
	Level           int     `json:"level"`
	CurrentLevelXP  int     `json:"currentLevelXp"`
	ProgressPercent float64 `json:"progressPercent"`
	Title           string  `json:"title"`
}

// ThresholdForLevel returns the XP needed to go from level l to l+1.
// Thresholds grow linearly: 500 at level 1, +250 per level after.
func ThresholdForLevel(l int) int {
	if l < 1 {
		l = 1
	}
	return 500 + (l-1)*250
}

// LevelFromXP maps a cumulative XP total to level, leftover XP within
// the level, progress percent and title. ProgressPercent is not
// clamped here; display code clamps to 100 where it matters.
func LevelFromXP(totalXP int) LevelInfo {
	level := 1
	remaining := totalXP
	for remaining >= ThresholdForLevel(level) {
		remaining -= ThresholdForLevel(level)
		level++
	}
	return LevelInfo{
		Level:           level,
		CurrentLevelXP:  remaining,
		ProgressPercent: float64(remaining) / float64(ThresholdForLevel(level)) * 100,
		Title:           TitleForLevel(level),
	}
}

// TitleForLevel returns the display title for a level.
func TitleForLevel(level int) string {
	switch {
	case level >= 10:
		return TitleAscended
	case level >= 5:
		return TitleMaster
	default:
		return TitleNovice
	}
}

// XPToNextLevel returns the number shown as "points needed": the size
// of the level the user is currently in, not a cumulative total.
func XPToNextLevel(totalXP int) int {
	return ThresholdForLevel(LevelFromXP(totalXP).Level)
}
