package repository

import (
	"context"
	"time"

	"RsiWatch/internal/domain/models"
)

// WatchlistStore persists the ordered, duplicate-free list of canonical symbols.
// Every operation is individually atomic; there are no cross-operation transactions.
type WatchlistStore interface {
	Snapshot(ctx context.Context) ([]string, error)
	// Observe delivers the current list, then every list after a mutation.
	// The channel is closed when ctx ends.
	Observe(ctx context.Context) (<-chan []string, error)
	Add(ctx context.Context, symbol string) (bool, error)
	Remove(ctx context.Context, symbol string) (bool, error)
	SetOrder(ctx context.Context, symbols []string) error
}

// RsiValueStore keeps the last known-good RSI per symbol.
type RsiValueStore interface {
	Get(ctx context.Context, symbols []string) (map[string]float64, error)
	Put(ctx context.Context, readings []models.RsiReading) error
	Seed(ctx context.Context, symbol string) error
	Delete(ctx context.Context, symbol string) error
}

// QuoteSource returns the latest RSI for a symbol.
type QuoteSource interface {
	FetchRSI(ctx context.Context, symbol string, period int) (models.RsiReading, error)
}

// AlertPublisher is the notification boundary.
type AlertPublisher interface {
	Publish(ctx context.Context, event models.AlertEvent) error
	Close() error
}

// CycleHistory records committed and failed cycles for later analysis.
type CycleHistory interface {
	Record(ctx context.Context, report *models.CycleReport) error
	Recent(ctx context.Context, limit int) ([]CycleRecord, error)
	Close() error
}

// CycleRecord is a flattened history row.
type CycleRecord struct {
	CycleID    string    `json:"cycle_id"`
	Policy     string    `json:"policy"`
	Committed  bool      `json:"committed"`
	Symbols    int       `json:"symbols"`
	Failed     int       `json:"failed"`
	AlertCount int       `json:"alert_count"`
	Alerted    []string  `json:"alerted"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

type Metrics interface {
	RecordCycle(policy, result string, seconds float64)
	RecordFetchError(kind string)
	RecordFetchLatency(seconds float64)
	RecordRSI(symbol string, value float64)
	RecordAlertCount(n int)
	RecordWatchlistSize(n int)
}
