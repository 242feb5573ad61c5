package models

import "time"

// Poll outcomes recorded in the journal.
const (
	OutcomeCommitted = "COMMITTED"
	OutcomeDiscarded = "DISCARDED"
	OutcomeSkipped   = "SKIPPED"
	OutcomeDropped   = "DROPPED"
)

// PollEvent is a single journal entry describing what happened to a tick.
type PollEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	View       string    `json:"view"`
	Tick       uint64    `json:"tick"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
}
