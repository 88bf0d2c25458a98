package domain

import "github.com/google/uuid"

// ─── ID Constructors ────────────────────────────────────────────────────────
// Short random ids; AI-generated plan blocks get an "ai-" prefix so
// they are recognizable after a wholesale plan replacement.

// NewHabitID returns a fresh habit id.
func NewHabitID() string {
	return "habit-" + uuid.New().String()[:8]
}

// NewBlockID returns a fresh time-block id.
func NewBlockID() string {
	return "block-" + uuid.New().String()[:8]
}

// NewGeneratedBlockID returns an id for a block produced by the
// suggestion service.
func NewGeneratedBlockID() string {
	return "ai-" + uuid.New().String()[:8]
}

// NewMessageID returns a fresh inbox-message id.
func NewMessageID() string {
	return "msg-" + uuid.New().String()[:8]
}
