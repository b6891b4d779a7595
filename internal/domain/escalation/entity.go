package escalation

import "time"

// Item names one request forced to ESCALATED by the cutoff sweep.
type Item struct {
	Type string `json:"type"` // "CorrectionRequest" or "TimeException"
	ID   string `json:"id"`
}

type Result struct {
	Cutoff    time.Time `json:"cutoff"`
	Triggered bool      `json:"triggered"`
	Count     int       `json:"count"`
	Items     []Item    `json:"items"`
}
