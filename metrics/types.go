// Package metrics records what the orchestrator does: Prometheus series for
// scraping and a small in-memory action history for the health endpoint.
package metrics

import "time"

// Action outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeWarning = "warning"
	OutcomeError   = "error"
)

// ActionRecord is one orchestrator action as seen by the health endpoint.
type ActionRecord struct {
	Action   string        `json:"action"`
	Outcome  string        `json:"outcome"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
}

// ActionStats aggregates the records of one action.
type ActionStats struct {
	Count       int64         `json:"count"`
	Errors      int64         `json:"errors"`
	AvgDuration time.Duration `json:"avg_duration"`
}

// Snapshot is the JSON body of the health endpoint.
type Snapshot struct {
	Status   string                  `json:"status"`
	Uptime   string                  `json:"uptime"`
	Breaker  string                  `json:"model_api_breaker,omitempty"`
	Actions  map[string]*ActionStats `json:"actions"`
	Recent   []ActionRecord          `json:"recent"`
	Sessions int                     `json:"sessions"`
}
