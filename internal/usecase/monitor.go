package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"RsiWatch/internal/domain/models"
	domrepo "RsiWatch/internal/domain/repository"
	domsvc "RsiWatch/internal/domain/service"
	applogger "RsiWatch/pkg/logger"
	"RsiWatch/pkg/metrics"

	"github.com/google/uuid"
)

var (
	// ErrCycleFailed means the cycle was discarded under the strict policy.
	// Callers should retry later.
	ErrCycleFailed = errors.New("monitor cycle failed, retry later")
	// ErrCycleSuperseded means a newer cycle started before this one committed.
	ErrCycleSuperseded = errors.New("monitor cycle superseded")
)

const (
	resultCommitted  = "committed"
	resultFailed     = "failed"
	resultSeeded     = "seeded"
	resultSuperseded = "superseded"
	resultAborted    = "aborted"
	resultError      = "error"
)

type MonitorOption func(*MonitorEngine)

func WithPolicy(p models.AggregationPolicy) MonitorOption {
	return func(e *MonitorEngine) { e.policy = p }
}

func WithPeriod(period int) MonitorOption {
	return func(e *MonitorEngine) { e.period = period }
}

func WithDefaultSymbols(symbols []string) MonitorOption {
	return func(e *MonitorEngine) { e.defaults = append([]string(nil), symbols...) }
}

// WithMaxConcurrency bounds the per-cycle fan-out. n <= 0 runs every symbol at once.
func WithMaxConcurrency(n int) MonitorOption {
	return func(e *MonitorEngine) { e.maxConcurrency = n }
}

func WithCycleTimeout(d time.Duration) MonitorOption {
	return func(e *MonitorEngine) { e.cycleTimeout = d }
}

func WithPublisher(p domrepo.AlertPublisher) MonitorOption {
	return func(e *MonitorEngine) { e.publisher = p }
}

func WithHistory(h domrepo.CycleHistory) MonitorOption {
	return func(e *MonitorEngine) { e.history = h }
}

func WithMetrics(m domrepo.Metrics) MonitorOption {
	return func(e *MonitorEngine) { e.metrics = m }
}

// WithOnCommit registers fn to run after each committed cycle.
func WithOnCommit(fn func(models.AlertEvent)) MonitorOption {
	return func(e *MonitorEngine) { e.onCommit = append(e.onCommit, fn) }
}

func WithMonitorLogger(l *applogger.Logger) MonitorOption {
	return func(e *MonitorEngine) { e.log = l }
}

// MonitorEngine runs monitoring cycles over the watchlist.
type MonitorEngine struct {
	watchlist  domrepo.WatchlistStore
	values     domrepo.RsiValueStore
	quotes     domrepo.QuoteSource
	resolver   domsvc.SymbolResolver
	aggregator *AlertAggregator

	publisher domrepo.AlertPublisher
	history   domrepo.CycleHistory
	metrics   domrepo.Metrics
	log       *applogger.Logger
	onCommit  []func(models.AlertEvent)

	policy         models.AggregationPolicy
	period         int
	defaults       []string
	maxConcurrency int
	cycleTimeout   time.Duration

	runMu      sync.Mutex
	generation uint64
	cancelRun  context.CancelFunc

	// commit is the only point where a cycle becomes visible
	commitMu sync.Mutex
}

func NewMonitorEngine(
	watchlist domrepo.WatchlistStore,
	values domrepo.RsiValueStore,
	quotes domrepo.QuoteSource,
	resolver domsvc.SymbolResolver,
	aggregator *AlertAggregator,
	opts ...MonitorOption,
) *MonitorEngine {
	e := &MonitorEngine{
		watchlist:  watchlist,
		values:     values,
		quotes:     quotes,
		resolver:   resolver,
		aggregator: aggregator,
		metrics:    metrics.Nop{},
		log:        applogger.Nop(),
		policy:     models.PolicyStrict,
		period:     14,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.aggregator == nil {
		e.aggregator = NewAlertAggregator(models.DefaultThresholds)
	}
	return e
}

func (e *MonitorEngine) Policy() models.AggregationPolicy { return e.policy }

// Surface returns the current alert surface.
func (e *MonitorEngine) Surface() models.AlertSurface { return e.aggregator.Surface() }

// RunCycle runs one monitoring cycle. Starting a cycle cancels any cycle still in
// flight; the older one returns ErrCycleSuperseded without committing.
// Under the strict policy any per-symbol failure discards the cycle and
// ErrCycleFailed is returned along with the report.
func (e *MonitorEngine) RunCycle(ctx context.Context) (*models.CycleReport, error) {
	ctx, gen, done := e.begin(ctx)
	defer done()

	report := &models.CycleReport{
		CycleID:   uuid.NewString(),
		Policy:    e.policy,
		StartedAt: time.Now(),
	}
	log := e.log.With(applogger.String("cycle_id", report.CycleID))

	snapshot, err := e.watchlist.Snapshot(ctx)
	if err != nil {
		return e.finish(log, report, resultError, err)
	}
	report.Snapshot = snapshot
	e.metrics.RecordWatchlistSize(len(snapshot))

	if len(snapshot) == 0 {
		added, err := e.seed(ctx, log)
		if err != nil {
			return e.finish(log, report, resultError, err)
		}
		report.Seeded = true
		report.Snapshot = added
		log.Info("empty watchlist seeded", applogger.Strings("symbols", added))
		return e.finish(log, report, resultSeeded, nil)
	}

	report.Results = e.fanOut(ctx, snapshot)
	if err := e.interrupted(ctx, gen); err != nil {
		return e.finish(log, report, resultFor(err), err)
	}

	for _, r := range report.Results {
		if r.Failed() {
			report.Failed = append(report.Failed, r.Symbol)
			log.Warn("symbol check failed",
				applogger.String("symbol", r.Symbol),
				applogger.String("kind", string(models.KindOf(r.Err))),
				applogger.Error(r.Err),
			)
		}
	}

	if len(report.Failed) > 0 && e.policy == models.PolicyStrict {
		return e.finish(log, report, resultFailed,
			fmt.Errorf("%w: %d of %d symbols failed: %s", ErrCycleFailed, len(report.Failed), len(snapshot), strings.Join(report.Failed, ", ")))
	}

	event, err := e.commit(ctx, gen, report, log)
	if err != nil {
		return e.finish(log, report, resultFor(err), err)
	}
	report.Committed = true
	report.Event = event
	return e.finish(log, report, resultCommitted, nil)
}

func (e *MonitorEngine) begin(parent context.Context) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(parent)
	runCtx, stop := ctx, context.CancelFunc(func() {})
	if e.cycleTimeout > 0 {
		runCtx, stop = context.WithTimeout(ctx, e.cycleTimeout)
	}

	e.runMu.Lock()
	if e.cancelRun != nil {
		e.cancelRun()
	}
	e.generation++
	gen := e.generation
	e.cancelRun = cancel
	e.runMu.Unlock()

	return runCtx, gen, func() {
		e.runMu.Lock()
		if e.generation == gen {
			e.cancelRun = nil
		}
		e.runMu.Unlock()
		stop()
		cancel()
	}
}

func (e *MonitorEngine) superseded(gen uint64) bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.generation != gen
}

func (e *MonitorEngine) interrupted(ctx context.Context, gen uint64) error {
	if e.superseded(gen) {
		return ErrCycleSuperseded
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cycle aborted: %w", err)
	}
	return nil
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, ErrCycleSuperseded):
		return resultSuperseded
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resultAborted
	default:
		return resultError
	}
}

// seed adds the default symbols to an empty watchlist.
func (e *MonitorEngine) seed(ctx context.Context, log *applogger.Logger) ([]string, error) {
	added := make([]string, 0, len(e.defaults))
	for _, name := range e.defaults {
		symbol, ok := e.resolver.ResolveToCanonical(name)
		if !ok {
			log.Warn("default symbol not resolvable", applogger.String("query", name))
			continue
		}
		if _, err := e.watchlist.Add(ctx, symbol); err != nil {
			return added, err
		}
		if err := e.values.Seed(ctx, symbol); err != nil {
			return added, err
		}
		added = append(added, symbol)
	}
	return added, nil
}

func (e *MonitorEngine) fanOut(ctx context.Context, symbols []string) []models.MonitorResult {
	results := make([]models.MonitorResult, len(symbols))

	var sem chan struct{}
	if e.maxConcurrency > 0 {
		sem = make(chan struct{}, e.maxConcurrency)
	}

	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					results[i] = models.MonitorResult{Symbol: sym, Err: fmt.Errorf("check %s panicked: %v", sym, p)}
				}
			}()
			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					results[i] = models.MonitorResult{Symbol: sym, Err: models.NetworkError(sym, ctx.Err())}
					return
				}
			}
			results[i] = e.check(ctx, sym)
		}(i, sym)
	}
	wg.Wait()
	return results
}

func (e *MonitorEngine) check(ctx context.Context, symbol string) models.MonitorResult {
	start := time.Now()
	reading, err := e.quotes.FetchRSI(ctx, symbol, e.period)
	e.metrics.RecordFetchLatency(time.Since(start).Seconds())
	if err != nil {
		kind := models.KindOf(err)
		if kind == "" {
			kind = models.KindNetwork
		}
		e.metrics.RecordFetchError(string(kind))
		return models.MonitorResult{Symbol: symbol, Err: err}
	}
	return models.MonitorResult{
		Symbol: symbol,
		RSI:    reading.RSI,
		HasRSI: true,
		State:  Classify(reading.RSI, e.aggregator.Thresholds()),
	}
}

// commit persists RSI values in watchlist order, swaps the alert surface, then
// publishes the event and runs the commit hooks. Nothing is changed when the cycle
// was superseded or cancelled, or when the values cannot be stored.
// Events leave in commit order because all of it runs under commitMu.
func (e *MonitorEngine) commit(ctx context.Context, gen uint64, report *models.CycleReport, log *applogger.Logger) (*models.AlertEvent, error) {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	if err := e.interrupted(ctx, gen); err != nil {
		return nil, err
	}

	readings := make([]models.RsiReading, 0, len(report.Results))
	for _, r := range report.Results {
		if r.Failed() || !r.HasRSI {
			continue
		}
		readings = append(readings, models.RsiReading{Symbol: r.Symbol, RSI: r.RSI, Period: e.period})
	}
	if err := e.values.Put(ctx, readings); err != nil {
		return nil, err
	}

	event := e.aggregator.Commit(report.CycleID, report.Snapshot, report.Results, e.resolver.ResolveToDisplayName)
	for _, r := range readings {
		e.metrics.RecordRSI(r.Symbol, r.RSI)
	}
	e.metrics.RecordAlertCount(event.AlertCount)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if e.publisher != nil {
		if err := e.publisher.Publish(pubCtx, event); err != nil {
			log.Error("publish alert event", applogger.Error(err))
		}
	}
	for _, fn := range e.onCommit {
		fn(event)
	}
	return &event, nil
}

func (e *MonitorEngine) finish(log *applogger.Logger, report *models.CycleReport, result string, err error) (*models.CycleReport, error) {
	report.Duration = time.Since(report.StartedAt)
	e.metrics.RecordCycle(string(e.policy), result, report.Duration.Seconds())

	if result != resultSuperseded && e.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if herr := e.history.Record(ctx, report); herr != nil {
			log.Warn("record cycle history", applogger.Error(herr))
		}
		cancel()
	}

	fields := []applogger.Field{
		applogger.String("result", result),
		applogger.Int("symbols", len(report.Snapshot)),
		applogger.Int("failed", len(report.Failed)),
		applogger.Duration("duration_ms", report.Duration),
	}
	switch {
	case err == nil && report.Event != nil:
		log.Info("cycle committed", append(fields, applogger.Int("alert_count", report.Event.AlertCount))...)
	case err == nil:
		log.Info("cycle finished", fields...)
	case result == resultFailed || result == resultSuperseded || result == resultAborted:
		log.Warn("cycle not committed", append(fields, applogger.Error(err))...)
	default:
		log.Error("cycle error", append(fields, applogger.Error(err))...)
	}
	return report, err
}
