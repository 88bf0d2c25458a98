package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure; no infrastructure dependency.

var (
	// Validation errors, rejected before any state mutation
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrInvalidFrequency = errors.New("frequency must be daily or weekly")
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrInvalidTime      = errors.New("time must be HH:MM in 24-hour format")
	ErrInvalidBlockType = errors.New("unknown block type")

	// Lookup errors
	ErrHabitNotFound   = errors.New("habit not found")
	ErrBlockNotFound   = errors.New("time block not found")
	ErrMessageNotFound = errors.New("inbox message not found")

	// Session errors
	ErrNotAuthenticated = errors.New("no authenticated session")
	ErrBadCredentials   = errors.New("invalid username or password")

	// Persistence boundary errors
	ErrRemoteUnavailable = errors.New("remote store unreachable")
	ErrMalformedPayload  = errors.New("malformed user payload")
	ErrNoCachedData      = errors.New("no locally cached user data")

	// Suggestion boundary errors
	ErrSuggestionFailed = errors.New("suggestion service returned no usable plan")
)
