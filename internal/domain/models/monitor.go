package models

import (
	"encoding/json"
	"time"
)

// AlertState is the classification of a single RSI value.
type AlertState int

const (
	StateNormal AlertState = iota
	StateLow
	StateHigh
)

func (s AlertState) String() string {
	switch s {
	case StateLow:
		return "LOW"
	case StateHigh:
		return "HIGH"
	default:
		return "NORMAL"
	}
}

func (s AlertState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Alerted reports whether the state contributes to the alert surface.
func (s AlertState) Alerted() bool {
	return s == StateLow || s == StateHigh
}

// Thresholds bound the NORMAL band. Low < High.
type Thresholds struct {
	Low  float64
	High float64
}

// DefaultThresholds are the classic 30/70 bands.
var DefaultThresholds = Thresholds{Low: 30, High: 70}

// AggregationPolicy decides what a cycle does when some symbols failed.
type AggregationPolicy string

const (
	// PolicyStrict discards the whole cycle when any symbol failed.
	PolicyStrict AggregationPolicy = "strict"
	// PolicyLenient drops failed symbols and aggregates the rest.
	PolicyLenient AggregationPolicy = "lenient"
)

// MonitorResult is the outcome of one symbol task within a cycle.
type MonitorResult struct {
	Symbol string     `json:"symbol"`
	RSI    float64    `json:"rsi"`
	HasRSI bool       `json:"has_rsi"`
	State  AlertState `json:"state"`
	Err    error      `json:"-"`
}

func (r MonitorResult) Failed() bool { return r.Err != nil }

// AlertSurface is the current set of alerted names, in watchlist order.
type AlertSurface struct {
	AlertedNames []string  `json:"alerted_names"`
	UpdatedAt    time.Time `json:"updated_at"`
	CycleID      string    `json:"cycle_id"`
}

// AlertEvent is emitted once per successfully aggregated cycle, including
// cycles with zero alerts.
type AlertEvent struct {
	CycleID      string    `json:"cycle_id"`
	AlertCount   int       `json:"alert_count"`
	AlertedNames []string  `json:"alerted_names"`
	Timestamp    time.Time `json:"timestamp"`
}

// CycleReport summarizes one RunCycle invocation.
type CycleReport struct {
	CycleID   string            `json:"cycle_id"`
	Policy    AggregationPolicy `json:"policy"`
	Snapshot  []string          `json:"snapshot"`
	Results   []MonitorResult   `json:"results"`
	Committed bool              `json:"committed"`
	Seeded    bool              `json:"seeded"`
	Failed    []string          `json:"failed,omitempty"`
	Event     *AlertEvent       `json:"event,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
}
