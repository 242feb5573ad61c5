package models

import (
	"encoding/json"
	"time"
)

// ViewSnapshot is the last committed state of a view as kept in the local
// cache. Payload is the JSON of the view's data.
type ViewSnapshot struct {
	View        string          `json:"view"`
	Tick        uint64          `json:"tick"`
	CommittedAt time.Time       `json:"committed_at"`
	Payload     json.RawMessage `json:"payload"`
}

// Empty reports whether nothing was cached for the view.
func (s ViewSnapshot) Empty() bool {
	return s.View == ""
}
