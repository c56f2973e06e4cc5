package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the monitoring pipeline.
type ErrorKind string

const (
	KindResolution       ErrorKind = "resolution"
	KindNetwork          ErrorKind = "network"
	KindInsufficientData ErrorKind = "insufficient_data"
	KindPersistence      ErrorKind = "persistence"
)

var (
	ErrResolution       = errors.New("symbol could not be resolved")
	ErrNetwork          = errors.New("quote source unavailable")
	ErrInsufficientData = errors.New("insufficient price history")
	ErrPersistence      = errors.New("persistence failure")
)

// MonitorError carries the kind and the symbol a failure belongs to.
// errors.Is matches both the kind sentinel and the wrapped cause.
type MonitorError struct {
	Kind   ErrorKind
	Symbol string
	Err    error
}

func (e *MonitorError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Symbol, e.Err)
}

func (e *MonitorError) Unwrap() error { return e.Err }

func (e *MonitorError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindResolution:
		return ErrResolution
	case KindNetwork:
		return ErrNetwork
	case KindInsufficientData:
		return ErrInsufficientData
	case KindPersistence:
		return ErrPersistence
	}
	return nil
}

func newError(kind ErrorKind, symbol string, err error) error {
	if err == nil {
		err = kind.sentinel()
	}
	return &MonitorError{Kind: kind, Symbol: symbol, Err: err}
}

func ResolutionError(query string) error {
	return newError(KindResolution, query, nil)
}

func NetworkError(symbol string, err error) error {
	return newError(KindNetwork, symbol, err)
}

func InsufficientDataError(symbol string, have, need int) error {
	return newError(KindInsufficientData, symbol, fmt.Errorf("%w: have %d closes, need %d", ErrInsufficientData, have, need))
}

func PersistenceError(op string, err error) error {
	return newError(KindPersistence, "", fmt.Errorf("%s: %w", op, err))
}

// KindOf returns the kind of err, or "" when err is not a MonitorError.
func KindOf(err error) ErrorKind {
	var me *MonitorError
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}
