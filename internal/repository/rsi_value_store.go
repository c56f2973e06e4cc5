package repository

import (
	"context"
	"strconv"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/domain/repository"
	"RsiWatch/pkg/kv"
)

// KVRsiValueStore keeps the last committed RSI per symbol in one hash.
// 0 means "not computed yet".
type KVRsiValueStore struct {
	store kv.Store
	key   string
}

func NewKVRsiValueStore(store kv.Store, key string) *KVRsiValueStore {
	return &KVRsiValueStore{store: store, key: key}
}

var _ repository.RsiValueStore = (*KVRsiValueStore)(nil)

// Get returns values for symbols, or for every stored symbol when symbols is nil.
// Missing symbols are absent from the map.
func (s *KVRsiValueStore) Get(ctx context.Context, symbols []string) (map[string]float64, error) {
	raw, err := s.store.HGetAll(ctx, s.key)
	if err != nil {
		return nil, models.PersistenceError("rsi get", err)
	}

	out := make(map[string]float64, len(raw))
	parse := func(sym string) {
		v, ok := raw[sym]
		if !ok {
			return
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out[sym] = f
		}
	}
	if symbols == nil {
		for sym := range raw {
			parse(sym)
		}
		return out, nil
	}
	for _, sym := range symbols {
		parse(sym)
	}
	return out, nil
}

func (s *KVRsiValueStore) Put(ctx context.Context, readings []models.RsiReading) error {
	if len(readings) == 0 {
		return nil
	}
	values := make(map[string]string, len(readings))
	for _, r := range readings {
		values[r.Symbol] = strconv.FormatFloat(r.RSI, 'f', -1, 64)
	}
	if err := s.store.HSet(ctx, s.key, values); err != nil {
		return models.PersistenceError("rsi put", err)
	}
	return nil
}

func (s *KVRsiValueStore) Seed(ctx context.Context, symbol string) error {
	if err := s.store.HSet(ctx, s.key, map[string]string{symbol: "0"}); err != nil {
		return models.PersistenceError("rsi seed", err)
	}
	return nil
}

func (s *KVRsiValueStore) Delete(ctx context.Context, symbol string) error {
	if err := s.store.HDel(ctx, s.key, symbol); err != nil {
		return models.PersistenceError("rsi delete", err)
	}
	return nil
}
