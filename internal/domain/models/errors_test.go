package models

import (
	"errors"
	"io"
	"testing"
)

func TestMonitorErrorMatching(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
		kind ErrorKind
	}{
		{"resolution", ResolutionError("nope"), ErrResolution, KindResolution},
		{"network", NetworkError("KT", io.ErrUnexpectedEOF), ErrNetwork, KindNetwork},
		{"insufficient", InsufficientDataError("KT", 3, 15), ErrInsufficientData, KindInsufficientData},
		{"persistence", PersistenceError("put rsi", io.ErrClosedPipe), ErrPersistence, KindPersistence},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.want) {
				t.Fatalf("errors.Is(%v, %v) = false", tc.err, tc.want)
			}
			if KindOf(tc.err) != tc.kind {
				t.Fatalf("kind = %q, want %q", KindOf(tc.err), tc.kind)
			}
		})
	}

	if !errors.Is(NetworkError("KT", io.ErrUnexpectedEOF), io.ErrUnexpectedEOF) {
		t.Fatalf("cause must stay reachable")
	}
	if errors.Is(NetworkError("KT", nil), ErrPersistence) {
		t.Fatalf("kinds must not cross-match")
	}
}

func TestAlertStateString(t *testing.T) {
	if StateLow.String() != "LOW" || StateHigh.String() != "HIGH" || StateNormal.String() != "NORMAL" {
		t.Fatalf("unexpected names")
	}
	if StateNormal.Alerted() || !StateLow.Alerted() || !StateHigh.Alerted() {
		t.Fatalf("unexpected alerted flags")
	}
}
