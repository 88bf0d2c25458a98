package gamify

import (
	"math"
	"time"

	"github.com/twinlab/twin/internal/domain"
)

// Energy model constants.
const (
	fullStartEnergy  = 100
	tiredStartEnergy = 75  // under 6 hours of sleep
	shortSleepMin    = 360 // 6 hours
	wakeHour         = 7   // decay starts at 07:00
	baseDecayPerHour = 4.5
	stressFactor     = 1.6  // stress level > 0.6
	highHRFactor     = 1.25 // average heart rate > 90 bpm
	nightEnergyCap   = 15   // 23:00–07:00
)

// ComputeEnergy maps wall-clock time plus optional health/context
// signals to a 0–100 energy score. Pure and stateless; callers pass
// the clock.
func ComputeEnergy(now time.Time, sample *domain.HealthSample, ctx *domain.DayContext) int {
	start := float64(fullStartEnergy)
	if sample != nil && sample.SleepMinutes > 0 && sample.SleepMinutes < shortSleepMin {
		start = tiredStartEnergy
	}

	hoursActive := float64(now.Hour()) + float64(now.Minute())/60 - wakeHour
	if hoursActive < 0 {
		hoursActive = 0
	}

	decay := baseDecayPerHour
	if ctx != nil && ctx.StressLevel > 0.6 {
		decay *= stressFactor
	}
	if sample != nil && sample.AvgHeartRate > 90 {
		decay *= highHRFactor
	}

	energy := start - hoursActive*decay

	// Night clamp: 23:00 through 06:59.
	if now.Hour() >= 23 || now.Hour() < wakeHour {
		energy = math.Min(energy, nightEnergyCap)
	}

	energy = math.Min(100, math.Max(0, energy))
	return int(math.Round(energy))
}

// Expression is the avatar's facial/animation state.
type Expression string

const (
	ExprSleeping Expression = "sleeping"
	ExprSleepy   Expression = "sleepy"
	ExprHappy    Expression = "happy"
)

// AvatarView drives avatar rendering for a given energy level.
type AvatarView struct {
	Expression     Expression `json:"expression"`
	Glow           bool       `json:"glow"`
	Opacity        float64    `json:"opacity"`
	AnimationSpeed float64    `json:"animationSpeed"`
}

// AvatarState maps wall-clock hour and energy to a discrete avatar
// state. Sleeping (by hour or very low energy) is checked first and
// short-circuits the rest.
func AvatarState(now time.Time, energy int) AvatarView {
	hour := now.Hour()
	if hour >= 22 || hour < 6 || energy < 15 {
		return AvatarView{Expression: ExprSleeping, Opacity: 0.8, AnimationSpeed: 0.5}
	}
	if energy < 30 {
		return AvatarView{Expression: ExprSleepy, Opacity: 0.95, AnimationSpeed: 0.75}
	}
	if energy >= 80 {
		return AvatarView{Expression: ExprHappy, Glow: true, Opacity: 1.0, AnimationSpeed: 1.2}
	}
	return AvatarView{Expression: ExprHappy, Opacity: 1.0, AnimationSpeed: 1.0}
}
