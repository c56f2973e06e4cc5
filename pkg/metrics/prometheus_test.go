package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordCycle("strict", "committed", 0.3)
	r.RecordCycle("strict", "failed", 0.1)
	r.RecordCycle("strict", "failed", 0.2)
	r.RecordFetchError("network")
	r.RecordRSI("KT", 71.5)
	r.RecordAlertCount(2)

	if got := testutil.ToFloat64(r.cycles.WithLabelValues("strict", "failed")); got != 2 {
		t.Fatalf("failed cycles = %v", got)
	}
	if got := testutil.ToFloat64(r.lastRSI.WithLabelValues("KT")); got != 71.5 {
		t.Fatalf("last rsi = %v", got)
	}
	if got := testutil.ToFloat64(r.alertCount); got != 2 {
		t.Fatalf("alert count = %v", got)
	}

	// a second recorder on its own registry must not collide
	_ = New(prometheus.NewRegistry())
}
