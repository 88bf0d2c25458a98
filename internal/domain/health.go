package domain

// HealthSample is an aggregated health reading for one day. Samples
// arrive as data from an external sync; there is no device integration
// in this process.
type HealthSample struct {
	SleepMinutes int `json:"sleepMinutes"`
	AvgHeartRate int `json:"avgHeartRate,omitempty"`
	Steps        int `json:"steps,omitempty"`
}

// DayContext carries self-reported context for one day.
type DayContext struct {
	StressLevel float64 `json:"stressLevel"` // 0..1
	IsIll       bool    `json:"isIll"`
}
