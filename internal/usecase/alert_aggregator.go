package usecase

import (
	"math"
	"sync"
	"time"

	"RsiWatch/internal/domain/models"
)

// Classify maps an RSI value to its alert state. A value of 0 means "not yet
// computed" and is never LOW.
func Classify(rsi float64, t models.Thresholds) models.AlertState {
	switch {
	case math.IsNaN(rsi):
		return models.StateNormal
	case rsi > 0 && rsi <= t.Low:
		return models.StateLow
	case rsi >= t.High:
		return models.StateHigh
	default:
		return models.StateNormal
	}
}

// AlertAggregator owns the alert surface. Only Commit changes it.
type AlertAggregator struct {
	thresholds models.Thresholds
	now        func() time.Time

	mu      sync.RWMutex
	surface models.AlertSurface
}

func NewAlertAggregator(t models.Thresholds) *AlertAggregator {
	return &AlertAggregator{
		thresholds: t,
		now:        time.Now,
		surface:    models.AlertSurface{AlertedNames: []string{}},
	}
}

func (a *AlertAggregator) Thresholds() models.Thresholds { return a.thresholds }

// Commit recomputes the surface from results, walking order so the alerted names
// follow watchlist order. Failed results are neither alerted nor normal; they are
// skipped. The returned event mirrors the new surface.
func (a *AlertAggregator) Commit(cycleID string, order []string, results []models.MonitorResult, displayName func(string) string) models.AlertEvent {
	bySymbol := make(map[string]models.MonitorResult, len(results))
	for _, r := range results {
		bySymbol[r.Symbol] = r
	}

	names := []string{}
	for _, sym := range order {
		r, ok := bySymbol[sym]
		if !ok || r.Failed() || !r.HasRSI {
			continue
		}
		if r.State.Alerted() {
			name := sym
			if displayName != nil {
				name = displayName(sym)
			}
			names = append(names, name)
		}
	}

	ts := a.now()
	a.mu.Lock()
	a.surface = models.AlertSurface{AlertedNames: names, UpdatedAt: ts, CycleID: cycleID}
	a.mu.Unlock()

	return models.AlertEvent{
		CycleID:      cycleID,
		AlertCount:   len(names),
		AlertedNames: append([]string(nil), names...),
		Timestamp:    ts,
	}
}

// Surface returns a copy of the current alert surface.
func (a *AlertAggregator) Surface() models.AlertSurface {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.surface
	s.AlertedNames = append([]string{}, a.surface.AlertedNames...)
	return s
}
