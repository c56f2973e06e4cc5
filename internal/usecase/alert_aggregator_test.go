package usecase

import (
	"reflect"
	"testing"

	"RsiWatch/internal/domain/models"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		rsi  float64
		want models.AlertState
	}{
		{29.9, models.StateLow},
		{30.0, models.StateLow},
		{30.01, models.StateNormal},
		{50.0, models.StateNormal},
		{69.99, models.StateNormal},
		{70.0, models.StateHigh},
		{99.5, models.StateHigh},
		{0, models.StateNormal},
		{-1, models.StateNormal},
	}
	for _, tc := range cases {
		if got := Classify(tc.rsi, models.DefaultThresholds); got != tc.want {
			t.Fatalf("Classify(%v) = %v, want %v", tc.rsi, got, tc.want)
		}
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	th := models.Thresholds{Low: 20, High: 80}
	if got := Classify(25, th); got != models.StateNormal {
		t.Fatalf("25 with 20/80 = %v", got)
	}
	if got := Classify(80, th); got != models.StateHigh {
		t.Fatalf("80 with 20/80 = %v", got)
	}
}

func TestAggregatorCommitFollowsWatchlistOrder(t *testing.T) {
	a := NewAlertAggregator(models.DefaultThresholds)
	order := []string{"^KS200", "030200.KS", "005930.KS", "066570.KS"}
	// completion order differs from watchlist order
	results := []models.MonitorResult{
		{Symbol: "066570.KS", RSI: 75, HasRSI: true, State: models.StateHigh},
		{Symbol: "005930.KS", RSI: 50, HasRSI: true, State: models.StateNormal},
		{Symbol: "^KS200", RSI: 25, HasRSI: true, State: models.StateLow},
		{Symbol: "030200.KS", Err: models.NetworkError("030200.KS", nil)},
	}
	names := map[string]string{"^KS200": "KOSPI200", "066570.KS": "LG전자"}
	ev := a.Commit("c1", order, results, func(s string) string {
		if n, ok := names[s]; ok {
			return n
		}
		return s
	})

	want := []string{"KOSPI200", "LG전자"}
	if ev.AlertCount != 2 || !reflect.DeepEqual(ev.AlertedNames, want) {
		t.Fatalf("event = %+v", ev)
	}
	s := a.Surface()
	if !reflect.DeepEqual(s.AlertedNames, want) || s.CycleID != "c1" {
		t.Fatalf("surface = %+v", s)
	}

	// the returned copy must not alias internal state
	s.AlertedNames[0] = "changed"
	if a.Surface().AlertedNames[0] != "KOSPI200" {
		t.Fatalf("surface aliased")
	}
}

func TestAggregatorZeroAlertsClears(t *testing.T) {
	a := NewAlertAggregator(models.DefaultThresholds)
	a.Commit("c1", []string{"A"}, []models.MonitorResult{{Symbol: "A", RSI: 10, HasRSI: true, State: models.StateLow}}, nil)
	ev := a.Commit("c2", []string{"A"}, []models.MonitorResult{{Symbol: "A", RSI: 50, HasRSI: true, State: models.StateNormal}}, nil)
	if ev.AlertCount != 0 || len(a.Surface().AlertedNames) != 0 {
		t.Fatalf("expected cleared surface, got %+v", a.Surface())
	}
}
