package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestSQLCycleHistoryRecentEmpty(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE cycle_history (
		cycle_id TEXT, started_at TIMESTAMP, policy TEXT, committed INTEGER, symbols INTEGER,
		failed INTEGER, alert_count INTEGER, alerted TEXT, duration_ms INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	h := NewClickHouseCycleHistory(db, "cycle_history")
	recs, err := h.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", recs)
	}

	mem, err := NewMemoryCycleHistory(5).Recent(context.Background(), 10)
	if err != nil || mem == nil || len(mem) != 0 {
		t.Fatalf("memory history: %#v, %v", mem, err)
	}
}
