package models

// Reading is one sampled meter value of a session. Empty strings mean the
// qualifier was not reported.
type Reading struct {
	Timestamp Timestamp `json:"timestamp"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Measurand string    `json:"measurand,omitempty"`
	Phase     string    `json:"phase,omitempty"`
	Context   string    `json:"context,omitempty"`
}
