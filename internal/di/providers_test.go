package di

import (
	"context"
	"testing"

	"RsiWatch/internal/repository"
	"RsiWatch/pkg/config"
	"RsiWatch/pkg/kv"
	applogger "RsiWatch/pkg/logger"
	"RsiWatch/pkg/metrics"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Storage.Backend = "memory"
	cfg.Scheduler.Enabled = false
	return cfg
}

func TestOptionalInfrastructureDisabled(t *testing.T) {
	cfg := testConfig(t)
	reg := ProvideRegistry()

	producer, err := ProvideKafkaProducer(cfg, reg)
	if err != nil || producer != nil {
		t.Fatalf("kafka disabled: producer=%v err=%v", producer, err)
	}
	ch, err := ProvideClickHouseClient(cfg)
	if err != nil || ch != nil {
		t.Fatalf("clickhouse disabled: client=%v err=%v", ch, err)
	}
	if _, ok := ProvideCycleHistory(cfg, nil).(*repository.MemoryCycleHistory); !ok {
		t.Fatalf("expected in-memory history without clickhouse")
	}
	if ProvideScheduler(cfg, nil, applogger.Nop()) != nil {
		t.Fatalf("scheduler must be nil when disabled")
	}

	cfg.Metrics.Disabled = true
	if _, ok := ProvideMetrics(cfg, reg).(metrics.Nop); !ok {
		t.Fatalf("expected nop metrics")
	}
}

func TestProvideKVStoreBackends(t *testing.T) {
	cfg := testConfig(t)
	s, err := ProvideKVStore(cfg)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := s.(*kv.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", s)
	}

	cfg.Storage.Backend = "sqlite"
	cfg.Storage.SQLite.Path = t.TempDir() + "/rsiwatch.db"
	s, err = ProvideKVStore(cfg)
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	defer s.Close()
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping sqlite: %v", err)
	}
}

func TestProvideMonitorEngineSeedsDefaults(t *testing.T) {
	cfg := testConfig(t)
	l := applogger.Nop()

	dir, err := ProvideDirectory(cfg, l)
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	store := kv.NewMemoryStore()
	ws := ProvideWatchlistStore(cfg, store, l)
	vs := ProvideRsiValueStore(cfg, store)
	resolver := ProvideResolver(dir)
	uc := ProvideWatchlistUseCase(ws, vs, resolver, l)
	reg := ProvideRegistry()

	engine := ProvideMonitorEngine(cfg, ws, vs, ProvideQuoteSource(cfg, resolver, l), resolver,
		ProvideAlertPublisher(cfg, l, nil), ProvideCycleHistory(cfg, nil), ProvideMetrics(cfg, reg), uc, l)

	report, err := engine.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("seeding cycle: %v", err)
	}
	if !report.Seeded || len(report.Snapshot) != len(cfg.Monitor.DefaultSymbols) {
		t.Fatalf("expected seeded defaults, got %+v", report)
	}
	if string(engine.Policy()) != cfg.Monitor.AggregationPolicy {
		t.Fatalf("policy = %s", engine.Policy())
	}
}
