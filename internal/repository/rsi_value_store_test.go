package repository

import (
	"context"
	"testing"

	"RsiWatch/internal/domain/models"
)

func TestRsiValueStore(t *testing.T) {
	ctx := context.Background()
	for name, backend := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewKVRsiValueStore(backend, "rsi_values")

			if err := s.Seed(ctx, "KT"); err != nil {
				t.Fatalf("seed: %v", err)
			}
			if err := s.Put(ctx, []models.RsiReading{
				{Symbol: "^KS200", RSI: 71.25},
				{Symbol: "005930.KS", RSI: 28.5},
			}); err != nil {
				t.Fatalf("put: %v", err)
			}

			got, err := s.Get(ctx, []string{"KT", "^KS200", "UNKNOWN"})
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if len(got) != 2 || got["KT"] != 0 || got["^KS200"] != 71.25 {
				t.Fatalf("values = %v", got)
			}
			if _, ok := got["UNKNOWN"]; ok {
				t.Fatalf("unknown symbol must be absent")
			}

			if err := s.Delete(ctx, "005930.KS"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			all, err := s.Get(ctx, nil)
			if err != nil {
				t.Fatalf("get all: %v", err)
			}
			if len(all) != 2 {
				t.Fatalf("all = %v", all)
			}
		})
	}
}
