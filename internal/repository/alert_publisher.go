package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/domain/repository"
	applogger "RsiWatch/pkg/logger"
)

// FormatAlertMessage renders the user-facing notification text for an event.
func FormatAlertMessage(e models.AlertEvent) string {
	if e.AlertCount == 0 {
		return "Alert(0): cleared"
	}
	return fmt.Sprintf("Alert(%d): %s", e.AlertCount, strings.Join(e.AlertedNames, ", "))
}

// messageProducer is the subset of pkg/kafka.Producer used here.
type messageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaAlertPublisher writes one JSON message per event, keyed by cycle id.
type KafkaAlertPublisher struct {
	producer messageProducer
	topic    string
}

func NewKafkaAlertPublisher(p messageProducer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: p, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, e models.AlertEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(e.CycleID), e); err != nil {
		return fmt.Errorf("kafka publish alert: %w", err)
	}
	return nil
}

func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}

// LogAlertPublisher writes the notification text to the application log.
type LogAlertPublisher struct {
	log *applogger.Logger
}

func NewLogAlertPublisher(l *applogger.Logger) *LogAlertPublisher {
	return &LogAlertPublisher{log: l}
}

func (p *LogAlertPublisher) Publish(_ context.Context, e models.AlertEvent) error {
	p.log.Info(FormatAlertMessage(e),
		applogger.String("cycle_id", e.CycleID),
		applogger.Int("alert_count", e.AlertCount),
	)
	return nil
}

func (p *LogAlertPublisher) Close() error { return nil }

// MultiAlertPublisher fans an event out to every publisher. All are attempted;
// errors are joined.
type MultiAlertPublisher struct {
	pubs []repository.AlertPublisher
}

func NewMultiAlertPublisher(pubs ...repository.AlertPublisher) *MultiAlertPublisher {
	return &MultiAlertPublisher{pubs: pubs}
}

func (m *MultiAlertPublisher) Publish(ctx context.Context, e models.AlertEvent) error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiAlertPublisher) Close() error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
