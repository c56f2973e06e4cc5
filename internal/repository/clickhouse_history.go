package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/domain/repository"
)

// CycleHistorySchema returns the DDL for the history table.
func CycleHistorySchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	cycle_id String,
	started_at DateTime64(3),
	policy LowCardinality(String),
	committed UInt8,
	symbols UInt16,
	failed UInt16,
	alert_count UInt16,
	alerted Array(String),
	duration_ms UInt32
) ENGINE = MergeTree ORDER BY (started_at, cycle_id)`, database, table),
	}
}

// ClickHouseCycleHistory stores one row per finished cycle.
type ClickHouseCycleHistory struct {
	db    *sql.DB
	table string
}

// NewClickHouseCycleHistory takes a fully qualified table name (db.table).
func NewClickHouseCycleHistory(db *sql.DB, table string) *ClickHouseCycleHistory {
	return &ClickHouseCycleHistory{db: db, table: table}
}

var _ repository.CycleHistory = (*ClickHouseCycleHistory)(nil)

func (h *ClickHouseCycleHistory) Record(ctx context.Context, r *models.CycleReport) error {
	rec := ToCycleRecord(r)
	q := fmt.Sprintf("INSERT INTO %s (cycle_id, started_at, policy, committed, symbols, failed, alert_count, alerted, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", h.table)
	committed := uint8(0)
	if rec.Committed {
		committed = 1
	}
	_, err := h.db.ExecContext(ctx, q,
		rec.CycleID,
		rec.StartedAt,
		rec.Policy,
		committed,
		uint16(rec.Symbols),
		uint16(rec.Failed),
		uint16(rec.AlertCount),
		rec.Alerted,
		uint32(rec.DurationMs),
	)
	if err != nil {
		return fmt.Errorf("insert cycle history: %w", err)
	}
	return nil
}

func (h *ClickHouseCycleHistory) Recent(ctx context.Context, limit int) ([]repository.CycleRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	q := fmt.Sprintf("SELECT cycle_id, started_at, policy, committed, symbols, failed, alert_count, alerted, duration_ms FROM %s ORDER BY started_at DESC LIMIT %d", h.table, limit)
	rows, err := h.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query cycle history: %w", err)
	}
	defer rows.Close()

	out := []repository.CycleRecord{}
	for rows.Next() {
		var (
			rec                         repository.CycleRecord
			committed                   uint8
			symbols, failed, alertCount uint16
			durationMs                  uint32
		)
		if err := rows.Scan(&rec.CycleID, &rec.StartedAt, &rec.Policy, &committed, &symbols, &failed, &alertCount, &rec.Alerted, &durationMs); err != nil {
			return nil, fmt.Errorf("scan cycle history: %w", err)
		}
		rec.Committed = committed == 1
		rec.Symbols, rec.Failed, rec.AlertCount = int(symbols), int(failed), int(alertCount)
		rec.DurationMs = int64(durationMs)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (h *ClickHouseCycleHistory) Close() error { return nil }

// ToCycleRecord flattens a report into a history row.
func ToCycleRecord(r *models.CycleReport) repository.CycleRecord {
	rec := repository.CycleRecord{
		CycleID:    r.CycleID,
		Policy:     string(r.Policy),
		Committed:  r.Committed,
		Symbols:    len(r.Snapshot),
		Failed:     len(r.Failed),
		Alerted:    []string{},
		StartedAt:  r.StartedAt,
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Event != nil {
		rec.AlertCount = r.Event.AlertCount
		rec.Alerted = append(rec.Alerted, r.Event.AlertedNames...)
	}
	return rec
}

// MemoryCycleHistory keeps the most recent records in a ring. Used when
// ClickHouse is disabled.
type MemoryCycleHistory struct {
	mu      sync.Mutex
	records []repository.CycleRecord
	max     int
}

func NewMemoryCycleHistory(max int) *MemoryCycleHistory {
	if max <= 0 {
		max = 100
	}
	return &MemoryCycleHistory{max: max}
}

func (h *MemoryCycleHistory) Record(_ context.Context, r *models.CycleReport) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, ToCycleRecord(r))
	if len(h.records) > h.max {
		h.records = h.records[len(h.records)-h.max:]
	}
	return nil
}

func (h *MemoryCycleHistory) Recent(_ context.Context, limit int) ([]repository.CycleRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.records) {
		limit = len(h.records)
	}
	out := make([]repository.CycleRecord, 0, limit)
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}

func (h *MemoryCycleHistory) Close() error { return nil }
