package models

// UnknownIDTag is the authorization tag shown for sessions the console
// synthesized before the backend reported them.
const UnknownIDTag = "Unknown"

// Session is one charging transaction.
type Session struct {
	ID            int        `json:"id"`
	TransactionID int        `json:"transaction_id"`
	StartTime     Timestamp  `json:"start_time"`
	EndTime       *Timestamp `json:"end_time"`
	MeterStart    int        `json:"meter_start"`
	MeterStop     *int       `json:"meter_stop"`
	TotalEnergy   *float64   `json:"total_energy"`
	StopReason    *string    `json:"stop_reason"`
	IDTag         string     `json:"id_tag"`

	// Placeholder marks a console-side stand-in; it is never written upstream.
	Placeholder bool `json:"placeholder,omitempty"`
}

// IsActive reports whether the session has not ended yet.
func (s Session) IsActive() bool {
	return s.EndTime == nil
}

// ReadingsKey is the identifier used to fetch the session's meter readings.
func (s Session) ReadingsKey() int {
	return s.TransactionID
}
