package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/domain/repository"
	applogger "RsiWatch/pkg/logger"
)

type fakeProducer struct {
	topic  string
	key    []byte
	value  interface{}
	err    error
	closed bool
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

func (p *fakeProducer) Close() error {
	p.closed = true
	return nil
}

func TestFormatAlertMessage(t *testing.T) {
	cases := []struct {
		event models.AlertEvent
		want  string
	}{
		{models.AlertEvent{AlertCount: 2, AlertedNames: []string{"KOSPI200", "삼성전자"}}, "Alert(2): KOSPI200, 삼성전자"},
		{models.AlertEvent{AlertCount: 0}, "Alert(0): cleared"},
	}
	for _, tc := range cases {
		if got := FormatAlertMessage(tc.event); got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}
}

func TestKafkaAlertPublisher(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaAlertPublisher(fp, "rsi.alerts")
	ev := models.AlertEvent{CycleID: "c-1", AlertCount: 1, AlertedNames: []string{"KT"}, Timestamp: time.Now()}

	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if fp.topic != "rsi.alerts" || string(fp.key) != "c-1" {
		t.Fatalf("topic/key = %s/%s", fp.topic, fp.key)
	}
	if got, ok := fp.value.(models.AlertEvent); !ok || got.CycleID != "c-1" {
		t.Fatalf("value = %#v", fp.value)
	}
	_ = p.Close()
	if !fp.closed {
		t.Fatalf("producer not closed")
	}
}

func TestMultiAlertPublisherAttemptsAll(t *testing.T) {
	boom := errors.New("broker down")
	failing := NewKafkaAlertPublisher(&fakeProducer{err: boom}, "t")
	ok := &fakeProducer{}
	m := NewMultiAlertPublisher(failing, NewLogAlertPublisher(applogger.Nop()), NewKafkaAlertPublisher(ok, "t"))

	err := m.Publish(context.Background(), models.AlertEvent{CycleID: "c-2"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if string(ok.key) != "c-2" {
		t.Fatalf("later publishers must still receive the event")
	}
	var _ repository.AlertPublisher = m
}

func TestMemoryCycleHistory(t *testing.T) {
	h := NewMemoryCycleHistory(2)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		r := &models.CycleReport{CycleID: id, Policy: models.PolicyStrict, Snapshot: []string{"KT"}, Committed: true,
			Event: &models.AlertEvent{AlertCount: 1, AlertedNames: []string{"KT"}}}
		if err := h.Record(ctx, r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, _ := h.Recent(ctx, 10)
	if len(got) != 2 || got[0].CycleID != "c" || got[1].CycleID != "b" {
		t.Fatalf("recent = %+v", got)
	}
	if got[0].AlertCount != 1 || got[0].Symbols != 1 || got[0].Policy != "strict" {
		t.Fatalf("record = %+v", got[0])
	}
}
