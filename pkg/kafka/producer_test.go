package kafka

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(WithRegisterer(prometheus.NewRegistry())); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestNewProducerAppliesOptions(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithCompression("zstd"),
		WithRequiredAcks(-1),
		WithAsync(true),
		WithRegisterer(prometheus.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	defer p.Close()

	if p.writer.Compression != kafka.Zstd || p.writer.RequiredAcks != kafka.RequireAll || !p.writer.Async {
		t.Fatalf("writer not configured: %+v", p.writer)
	}
}

func TestEncodeValue(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{[]byte("raw"), "raw"},
		{"text", "text"},
		{map[string]int{"alert_count": 2}, `{"alert_count":2}`},
	}
	for _, tc := range cases {
		got, err := encodeValue(tc.in)
		if err != nil || string(got) != tc.want {
			t.Fatalf("encodeValue(%v) = %s, %v", tc.in, got, err)
		}
	}
	if _, err := encodeValue(make(chan int)); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestProducerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newProducerMetrics(reg)
	m.observe("rsi.alerts", "snappy", 10, 0, nil)
	m.observe("rsi.alerts", "snappy", 0, 0, errors.New("broker down"))

	if v := testutil.ToFloat64(m.msgs.WithLabelValues("rsi.alerts", "snappy", "error")); v != 1 {
		t.Fatalf("error count = %v", v)
	}
	if v := testutil.ToFloat64(m.bytes.WithLabelValues("rsi.alerts", "snappy")); v != 10 {
		t.Fatalf("bytes = %v", v)
	}
}
