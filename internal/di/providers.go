package di

import (
	"context"
	"fmt"
	"time"

	"RsiWatch/internal/domain/models"
	domrepo "RsiWatch/internal/domain/repository"
	domsvc "RsiWatch/internal/domain/service"
	"RsiWatch/internal/handler/api"
	"RsiWatch/internal/repository"
	"RsiWatch/internal/scheduler"
	"RsiWatch/internal/service/directory"
	"RsiWatch/internal/service/quote"
	"RsiWatch/internal/service/ratelimit"
	"RsiWatch/internal/usecase"
	pkgch "RsiWatch/pkg/clickhouse"
	"RsiWatch/pkg/config"
	xhttp "RsiWatch/pkg/http"
	pkgkafka "RsiWatch/pkg/kafka"
	"RsiWatch/pkg/kv"
	applogger "RsiWatch/pkg/logger"
	"RsiWatch/pkg/metrics"
	"RsiWatch/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates the registry served on the metrics endpoint.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) domrepo.Metrics {
	if cfg.Metrics.Disabled {
		return metrics.Nop{}
	}
	return metrics.New(reg)
}

// ProvideKVStore opens the configured storage backend.
func ProvideKVStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case "redis":
		s, err := kv.NewRedisStore(
			kv.WithRedisAddr(cfg.Storage.Redis.Addr),
			kv.WithRedisPassword(cfg.Storage.Redis.Password),
			kv.WithRedisDB(cfg.Storage.Redis.DB),
			kv.WithRedisPrefix(cfg.Storage.Redis.Prefix),
			kv.WithRedisPool(cfg.Storage.Redis.PoolSize, cfg.Storage.Redis.MinIdle, cfg.Storage.Redis.PoolTimeout),
			kv.WithRedisTxRetries(cfg.Storage.Redis.TxRetries),
		)
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	case "memory":
		return kv.NewMemoryStore(), nil
	default:
		s, err := kv.NewSQLiteStore(
			kv.WithSQLitePath(cfg.Storage.SQLite.Path),
			kv.WithSQLiteBusyTimeout(cfg.Storage.SQLite.BusyTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		return s, nil
	}
}

// ProvideDirectory loads the symbol directory.
func ProvideDirectory(cfg *config.Config, l *applogger.Logger) (*directory.Directory, error) {
	d := directory.New(directory.WithPath(cfg.Directory.Path), directory.WithLogger(l))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Load(ctx); err != nil {
		return nil, fmt.Errorf("symbol directory: %w", err)
	}
	return d, nil
}

func ProvideResolver(d *directory.Directory) domsvc.SymbolResolver {
	return d
}

// ProvideQuoteSource creates the RSI source selected by quote.provider.
func ProvideQuoteSource(cfg *config.Config, resolver domsvc.SymbolResolver, l *applogger.Logger) domrepo.QuoteSource {
	client := xhttp.NewClient(
		xhttp.WithConnectTimeout(cfg.Quote.ConnectTimeout),
		xhttp.WithReadTimeout(cfg.Quote.ReadTimeout),
		xhttp.WithRateLimit(cfg.Quote.RequestsPerSec, 1),
		xhttp.WithRetries(cfg.Quote.MaxRetries, 200*time.Millisecond),
	)
	opts := []quote.Option{
		quote.WithBaseURL(cfg.Quote.BaseURL),
		quote.WithResolver(resolver),
		quote.WithLogger(l),
	}
	if cfg.Quote.Provider == "twelvedata" {
		opts = append(opts, quote.WithAPIKey(cfg.Quote.APIKey), quote.WithOutputSize(cfg.Quote.OutputSize))
		return quote.NewTwelveDataSource(client, opts...)
	}
	return quote.NewRemoteRSISource(client, opts...)
}

// ProvideKafkaProducer creates a Kafka producer, nil when kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher always logs alerts and also sends them to Kafka when enabled.
func ProvideAlertPublisher(cfg *config.Config, l *applogger.Logger, producer *pkgkafka.Producer) domrepo.AlertPublisher {
	pubs := []domrepo.AlertPublisher{repository.NewLogAlertPublisher(l)}
	if producer != nil {
		pubs = append(pubs, repository.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic))
	}
	return repository.NewMultiAlertPublisher(pubs...)
}

// ProvideClickHouseClient creates a ClickHouse client, nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, repository.CycleHistorySchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCycleHistory stores cycle reports in ClickHouse, or in memory without it.
func ProvideCycleHistory(cfg *config.Config, ch *pkgch.Client) domrepo.CycleHistory {
	if ch == nil {
		return repository.NewMemoryCycleHistory(200)
	}
	return repository.NewClickHouseCycleHistory(ch.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
}

func ProvideWatchlistStore(cfg *config.Config, store kv.Store, l *applogger.Logger) domrepo.WatchlistStore {
	return repository.NewKVWatchlistStore(store, cfg.Storage.WatchlistKey, l)
}

func ProvideRsiValueStore(cfg *config.Config, store kv.Store) domrepo.RsiValueStore {
	return repository.NewKVRsiValueStore(store, cfg.Storage.RsiKey)
}

func ProvideWatchlistUseCase(
	store domrepo.WatchlistStore,
	values domrepo.RsiValueStore,
	resolver domsvc.SymbolResolver,
	l *applogger.Logger,
) *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase(store, values, resolver, l)
}

// ProvideMonitorEngine creates the cycle engine. Committed cycles refresh row observers.
func ProvideMonitorEngine(
	cfg *config.Config,
	store domrepo.WatchlistStore,
	values domrepo.RsiValueStore,
	quotes domrepo.QuoteSource,
	resolver domsvc.SymbolResolver,
	pub domrepo.AlertPublisher,
	history domrepo.CycleHistory,
	m domrepo.Metrics,
	uc *usecase.WatchlistUseCase,
	l *applogger.Logger,
) *usecase.MonitorEngine {
	agg := usecase.NewAlertAggregator(models.Thresholds{
		Low:  cfg.Monitor.LowThreshold,
		High: cfg.Monitor.HighThreshold,
	})
	return usecase.NewMonitorEngine(store, values, quotes, resolver, agg,
		usecase.WithPolicy(models.AggregationPolicy(cfg.Monitor.AggregationPolicy)),
		usecase.WithPeriod(cfg.Quote.Period),
		usecase.WithDefaultSymbols(cfg.Monitor.DefaultSymbols),
		usecase.WithMaxConcurrency(cfg.Monitor.MaxConcurrency),
		usecase.WithCycleTimeout(cfg.Monitor.CycleTimeout),
		usecase.WithPublisher(pub),
		usecase.WithHistory(history),
		usecase.WithMetrics(m),
		usecase.WithOnCommit(func(models.AlertEvent) { uc.ValuesChanged() }),
		usecase.WithMonitorLogger(l.With(applogger.String("component", "monitor"))),
	)
}

// ProvideScheduler creates the periodic cycle scheduler, nil when disabled.
func ProvideScheduler(cfg *config.Config, engine *usecase.MonitorEngine, l *applogger.Logger) *scheduler.Scheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	return scheduler.New(engine,
		scheduler.WithInterval(cfg.Scheduler.Interval),
		scheduler.WithRunOnStart(cfg.Scheduler.RunOnStart),
		scheduler.WithLogger(l.With(applogger.String("component", "scheduler"))),
	)
}

func ProvideRefreshLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RefreshRate, cfg.Server.RefreshBurst)
}

// ProvideHTTPServer registers every API handler on the Echo server.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	reg *prometheus.Registry,
	store kv.Store,
	dir *directory.Directory,
	uc *usecase.WatchlistUseCase,
	engine *usecase.MonitorEngine,
	history domrepo.CycleHistory,
	rl *ratelimit.Limiter,
) *xhttp.Server {
	handlers := []xhttp.Handler{
		api.NewHealthHandler(store, dir),
		api.NewWatchlistHandler(l, uc, engine),
		api.NewMonitorHandler(l, engine, history, rl),
	}
	metricsPath := cfg.Metrics.Path
	if cfg.Metrics.Disabled {
		metricsPath = ""
	}
	return xhttp.NewServer(handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(metricsPath, reg),
		xhttp.WithLogger(l.With(applogger.String("component", "http"))),
	)
}

// ProvideApp assembles the application and registers shutdown hooks.
// Log batches go to Kafka through the shared producer when the collector is enabled.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	sched *scheduler.Scheduler,
	store kv.Store,
	producer *pkgkafka.Producer,
	pub domrepo.AlertPublisher,
	history domrepo.CycleHistory,
	ch *pkgch.Client,
) *server.App {
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.Interval,
			CountThreshold: cfg.Log.Collector.CountThreshold,
			Topic:          cfg.Log.Collector.Topic,
			Publisher:      producer,
		})
	}

	app := server.New(cfg, l, srv, sched)
	app.OnShutdown("log collector", func() error { l.RemoveCollector(); return nil })
	// closes the kafka producer too
	app.OnShutdown("alert publisher", pub.Close)
	app.OnShutdown("cycle history", history.Close)
	if ch != nil {
		app.OnShutdown("clickhouse", ch.Close)
	}
	app.OnShutdown("storage", store.Close)
	return app
}
