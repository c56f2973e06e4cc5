package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/repository"
	"RsiWatch/internal/service/directory"
	"RsiWatch/pkg/kv"
)

type fakeQuotes struct {
	mu   sync.Mutex
	rsi  map[string]float64
	fail map[string]error
	// block, when set, is called before answering and may wait on ctx
	block func(ctx context.Context, symbol string) error
}

func newFakeQuotes(rsi map[string]float64) *fakeQuotes {
	return &fakeQuotes{rsi: rsi, fail: map[string]error{}}
}

func (q *fakeQuotes) set(symbol string, v float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rsi[symbol] = v
	delete(q.fail, symbol)
}

func (q *fakeQuotes) failWith(symbol string, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fail[symbol] = err
}

func (q *fakeQuotes) FetchRSI(ctx context.Context, symbol string, period int) (models.RsiReading, error) {
	q.mu.Lock()
	block := q.block
	q.mu.Unlock()
	if block != nil {
		if err := block(ctx, symbol); err != nil {
			return models.RsiReading{}, models.NetworkError(symbol, err)
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if err, ok := q.fail[symbol]; ok {
		return models.RsiReading{}, err
	}
	v, ok := q.rsi[symbol]
	if !ok {
		return models.RsiReading{}, models.NetworkError(symbol, errors.New("unknown symbol"))
	}
	return models.RsiReading{Symbol: symbol, RSI: v, Period: period}, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []models.AlertEvent
}

func (p *capturePublisher) Publish(_ context.Context, e models.AlertEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	backend   *kv.MemoryStore
	watchlist *repository.KVWatchlistStore
	values    *repository.KVRsiValueStore
	dir       *directory.Directory
	quotes    *fakeQuotes
	pub       *capturePublisher
	history   *repository.MemoryCycleHistory
}

func newFixture(t *testing.T, symbols ...string) *fixture {
	t.Helper()
	dir := directory.New()
	if err := dir.Load(context.Background()); err != nil {
		t.Fatalf("load directory: %v", err)
	}
	backend := kv.NewMemoryStore()
	f := &fixture{
		backend:   backend,
		watchlist: repository.NewKVWatchlistStore(backend, "monitored_stocks_order", nil),
		values:    repository.NewKVRsiValueStore(backend, "rsi_values"),
		dir:       dir,
		quotes:    newFakeQuotes(map[string]float64{}),
		pub:       &capturePublisher{},
		history:   repository.NewMemoryCycleHistory(10),
	}
	for _, s := range symbols {
		if _, err := f.watchlist.Add(context.Background(), s); err != nil {
			t.Fatalf("add %s: %v", s, err)
		}
	}
	return f
}

func (f *fixture) engine(opts ...MonitorOption) *MonitorEngine {
	base := []MonitorOption{
		WithPublisher(f.pub),
		WithHistory(f.history),
		WithDefaultSymbols([]string{"KOSPI200", "KOSDAQ", "KT", "삼성전자", "LG전자"}),
	}
	return NewMonitorEngine(f.watchlist, f.values, f.quotes, f.dir,
		NewAlertAggregator(models.DefaultThresholds), append(base, opts...)...)
}

func (f *fixture) storedRSI(t *testing.T) map[string]float64 {
	t.Helper()
	v, err := f.values.Get(context.Background(), nil)
	if err != nil {
		t.Fatalf("get values: %v", err)
	}
	return v
}
