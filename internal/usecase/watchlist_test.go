package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"RsiWatch/internal/domain/models"
)

func newWatchlistUseCase(t *testing.T, f *fixture) *WatchlistUseCase {
	t.Helper()
	return NewWatchlistUseCase(f.watchlist, f.values, f.dir, nil)
}

func TestAddSymbol(t *testing.T) {
	f := newFixture(t)
	u := newWatchlistUseCase(t, f)
	ctx := context.Background()

	cases := []struct {
		query string
		want  string
	}{
		{"삼성전자", "005930.KS"},
		{"kospi200", "^KS200"},
		{"123456", "123456.KS"},
		{"aapl.us", "AAPL.US"},
		{"005930.KS", "005930.KS"},
	}
	for _, tc := range cases {
		got, err := u.AddSymbol(ctx, tc.query)
		if err != nil {
			t.Fatalf("AddSymbol(%q): %v", tc.query, err)
		}
		if got != tc.want {
			t.Fatalf("AddSymbol(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}

	list, _ := f.watchlist.Snapshot(ctx)
	want := []string{"005930.KS", "^KS200", "123456.KS", "AAPL.US"}
	if !reflect.DeepEqual(list, want) {
		t.Fatalf("watchlist = %v, want %v", list, want)
	}
	if v := f.storedRSI(t); len(v) != 4 || v["AAPL.US"] != 0 {
		t.Fatalf("values not seeded: %v", v)
	}

	if _, err := u.AddSymbol(ctx, "no such thing"); !errors.Is(err, models.ErrResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
	if u.IsValidSymbol("no such thing") || !u.IsValidSymbol("  KT ") {
		t.Fatalf("IsValidSymbol mismatch")
	}
}

func TestAddSymbolKeepsStoredValue(t *testing.T) {
	f := newFixture(t, "030200.KS")
	u := newWatchlistUseCase(t, f)
	ctx := context.Background()
	if err := f.values.Put(ctx, []models.RsiReading{{Symbol: "030200.KS", RSI: 61}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := u.AddSymbol(ctx, "KT"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if v := f.storedRSI(t); v["030200.KS"] != 61 {
		t.Fatalf("re-adding must not reset the value: %v", v)
	}
}

func TestDeleteSymbol(t *testing.T) {
	f := newFixture(t)
	u := newWatchlistUseCase(t, f)
	ctx := context.Background()
	for _, q := range []string{"KT", "삼성전자", "AAPL.US"} {
		if _, err := u.AddSymbol(ctx, q); err != nil {
			t.Fatalf("add %s: %v", q, err)
		}
	}

	if err := u.DeleteSymbol(ctx, "삼성전자"); err != nil {
		t.Fatalf("delete by name: %v", err)
	}
	if err := u.DeleteSymbol(ctx, "AAPL.US"); err != nil {
		t.Fatalf("delete by symbol: %v", err)
	}
	if err := u.DeleteSymbol(ctx, "LG전자"); err != nil {
		t.Fatalf("deleting an absent symbol must be a no-op: %v", err)
	}

	list, _ := f.watchlist.Snapshot(ctx)
	if !reflect.DeepEqual(list, []string{"030200.KS"}) {
		t.Fatalf("watchlist = %v", list)
	}
	if v := f.storedRSI(t); len(v) != 1 {
		t.Fatalf("values not deleted: %v", v)
	}
}

func TestReorderByDisplayNames(t *testing.T) {
	f := newFixture(t, "^KS200", "030200.KS", "AAPL.US")
	u := newWatchlistUseCase(t, f)
	ctx := context.Background()

	if err := u.Reorder(ctx, []string{"AAPL.US", "KT", "KOSPI200"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	list, _ := f.watchlist.Snapshot(ctx)
	if !reflect.DeepEqual(list, []string{"AAPL.US", "030200.KS", "^KS200"}) {
		t.Fatalf("watchlist = %v", list)
	}
	if err := u.Reorder(ctx, []string{"KT", " "}); !errors.Is(err, models.ErrResolution) {
		t.Fatalf("blank name err = %v", err)
	}
}

func TestRows(t *testing.T) {
	f := newFixture(t)
	u := newWatchlistUseCase(t, f)
	ctx := context.Background()
	for _, q := range []string{"KOSPI200", "LG전자"} {
		if _, err := u.AddSymbol(ctx, q); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := f.values.Put(ctx, []models.RsiReading{{Symbol: "^KS200", RSI: 44.5}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	rows, err := u.Rows(ctx)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := []models.WatchlistRow{
		{Symbol: "^KS200", DisplayName: "KOSPI200", LastRSI: 44.5},
		{Symbol: "066570.KS", DisplayName: "LG전자", LastRSI: 0},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %+v", rows)
	}
}

func nextRows(t *testing.T, ch <-chan []models.WatchlistRow) []models.WatchlistRow {
	t.Helper()
	select {
	case rows, ok := <-ch:
		if !ok {
			t.Fatalf("rows channel closed")
		}
		return rows
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for rows")
	}
	return nil
}

func TestObserveRows(t *testing.T) {
	f := newFixture(t, "030200.KS")
	u := newWatchlistUseCase(t, f)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := u.ObserveRows(ctx)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if rows := nextRows(t, ch); len(rows) != 1 || rows[0].DisplayName != "KT" {
		t.Fatalf("initial rows = %+v", rows)
	}

	if _, err := u.AddSymbol(context.Background(), "삼성전자"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if rows := nextRows(t, ch); len(rows) != 2 || rows[1].Symbol != "005930.KS" {
		t.Fatalf("rows after add = %+v", rows)
	}

	// a committed cycle refreshes values without a watchlist change
	e := f.engine(WithOnCommit(func(models.AlertEvent) { u.ValuesChanged() }))
	f.quotes.set("030200.KS", 81)
	f.quotes.set("005930.KS", 33)
	if _, err := e.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	rows := nextRows(t, ch)
	if rows[0].LastRSI != 81 || rows[1].LastRSI != 33 {
		t.Fatalf("rows after cycle = %+v", rows)
	}

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("channel not closed")
	}
}
