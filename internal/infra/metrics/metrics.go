// Package metrics provides Prometheus metrics for Twin: counters for
// rewards, completions, persistence and suggestion-service calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Rewards ────────────────────────────────────────────────────────────────

// XPEarned tracks experience points granted, by source action.
var XPEarned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "twin",
	Name:      "xp_earned_total",
	Help:      "Total experience points granted.",
}, []string{"source"})

// LevelUps tracks level increases.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "twin",
	Name:      "level_ups_total",
	Help:      "Total level-ups.",
})

// HabitCompletions tracks habit completions, including capped ones.
var HabitCompletions = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "twin",
	Name:      "habit_completions_total",
	Help:      "Total habit completions recorded.",
})

// BlockCompletions tracks actual-track block completions by type.
var BlockCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "twin",
	Name:      "block_completions_total",
	Help:      "Total time-block completions recorded.",
}, []string{"type"})

// CapExceeded tracks actions that applied but earned no XP.
var CapExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "twin",
	Name:      "daily_cap_exceeded_total",
	Help:      "Actions past the daily reward cap.",
}, []string{"kind"})

// ─── Persistence ────────────────────────────────────────────────────────────

// Saves tracks successful cache writes.
var Saves = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "twin",
	Name:      "saves_total",
	Help:      "Total user-state saves to the local cache.",
})

// SaveFailures tracks failed cache writes.
var SaveFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "twin",
	Name:      "save_failures_total",
	Help:      "Total failed local cache writes.",
})

// RemoteSaveFailures tracks opportunistic remote writes that failed.
var RemoteSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "twin",
	Name:      "remote_save_failures_total",
	Help:      "Total failed remote store writes (data stays cached).",
})

// ─── Suggestion Service ─────────────────────────────────────────────────────

// SuggestionRequests tracks suggestion-service calls by kind and status.
var SuggestionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "twin",
	Name:      "suggestion_requests_total",
	Help:      "Suggestion service calls.",
}, []string{"kind", "status"})
