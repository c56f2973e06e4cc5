package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorFoldsRepeatedErrors(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		l.Error("fetch failed", String("symbol", "005930.KS"), Error(errors.New("timeout")))
	}
	l.collector.Flush()
	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(pub.batches))
	}
	if pub.topic != "logs" {
		t.Fatalf("unexpected topic %q", pub.topic)
	}
	batch := pub.batches[0]
	if len(batch) != 1 || batch[0].Count != 3 {
		t.Fatalf("expected one entry counted 3 times, got %+v", batch)
	}
	if batch[0].Fields["symbol"] != "005930.KS" {
		t.Fatalf("fields not kept: %+v", batch[0].Fields)
	}
}

func TestCollectorDoesNotCollectWarnings(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, Publisher: pub})
	l.Warn("slow")
	l.RemoveCollector()

	if len(pub.batches) != 0 {
		t.Fatalf("warnings must not be collected")
	}
}
