package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/domain/repository"
	"RsiWatch/pkg/kv"
	applogger "RsiWatch/pkg/logger"
)

// ErrInvalidSymbol is returned for symbols that cannot be stored in the
// comma-joined encoding.
var ErrInvalidSymbol = errors.New("invalid watchlist symbol")

// KVWatchlistStore keeps the ordered watchlist as one comma-joined value under a
// single key. Mutations go through kv.Store.Update, so each one is atomic against
// other writers of the key. Local observers are notified after every mutation.
type KVWatchlistStore struct {
	store kv.Store
	key   string
	log   *applogger.Logger

	// serializes local mutate+notify so observers see mutations in commit order
	writeMu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]*subscriber
	nextID int
}

type subscriber struct {
	ch chan []string
}

// offer replaces any undelivered list with the newest one; it never blocks.
func (s *subscriber) offer(list []string) {
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- list:
	default:
	}
}

func NewKVWatchlistStore(store kv.Store, key string, l *applogger.Logger) *KVWatchlistStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &KVWatchlistStore{
		store: store,
		key:   key,
		log:   l,
		subs:  make(map[int]*subscriber),
	}
}

var _ repository.WatchlistStore = (*KVWatchlistStore)(nil)

func (s *KVWatchlistStore) Snapshot(ctx context.Context) ([]string, error) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, models.PersistenceError("watchlist snapshot", err)
	}
	return decodeList(raw), nil
}

// Observe reads the current list and registers the subscriber under writeMu, so
// every later mutation is delivered to it.
func (s *KVWatchlistStore) Observe(ctx context.Context) (<-chan []string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	sub := &subscriber{ch: make(chan []string, 1)}
	sub.ch <- current

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs, id)
		close(sub.ch)
		s.subMu.Unlock()
	}()
	return sub.ch, nil
}

func (s *KVWatchlistStore) Add(ctx context.Context, symbol string) (bool, error) {
	symbol, err := validSymbol(symbol)
	if err != nil {
		return false, err
	}
	return s.mutate(ctx, "watchlist add", func(list []string) ([]string, bool) {
		if indexOf(list, symbol) >= 0 {
			return list, false
		}
		return append(list, symbol), true
	})
}

func (s *KVWatchlistStore) Remove(ctx context.Context, symbol string) (bool, error) {
	symbol = strings.TrimSpace(symbol)
	return s.mutate(ctx, "watchlist remove", func(list []string) ([]string, bool) {
		i := indexOf(list, symbol)
		if i < 0 {
			return list, false
		}
		return append(list[:i:i], list[i+1:]...), true
	})
}

// SetOrder replaces the whole list. Duplicates in symbols are dropped, keeping the
// first occurrence. It does not merge with concurrent edits.
func (s *KVWatchlistStore) SetOrder(ctx context.Context, symbols []string) error {
	next := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		v, err := validSymbol(sym)
		if err != nil {
			return err
		}
		if indexOf(next, v) < 0 {
			next = append(next, v)
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.store.Set(ctx, s.key, encodeList(next)); err != nil {
		return models.PersistenceError("watchlist set order", err)
	}
	s.notify(next)
	return nil
}

func (s *KVWatchlistStore) mutate(ctx context.Context, op string, fn func([]string) ([]string, bool)) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var changed bool
	stored, err := s.store.Update(ctx, s.key, func(current string, _ bool) (string, error) {
		next, ok := fn(decodeList(current))
		changed = ok
		if !ok {
			return current, nil
		}
		return encodeList(next), nil
	})
	if err != nil {
		return false, models.PersistenceError(op, err)
	}
	if changed {
		s.notify(decodeList(stored))
	}
	return changed, nil
}

func (s *KVWatchlistStore) notify(list []string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		cp := make([]string, len(list))
		copy(cp, list)
		sub.offer(cp)
	}
	s.log.Debug("watchlist changed", applogger.Strings("symbols", list), applogger.Int("observers", len(s.subs)))
}

func validSymbol(symbol string) (string, error) {
	v := strings.TrimSpace(symbol)
	if v == "" || strings.Contains(v, ",") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return v, nil
}

func decodeList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" && indexOf(out, p) < 0 {
			out = append(out, p)
		}
	}
	return out
}

func encodeList(list []string) string {
	return strings.Join(list, ",")
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
