package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/usecase"
	applogger "RsiWatch/pkg/logger"

	"github.com/go-co-op/gocron"
)

// Outcome is what a scheduled invocation reports back to the timer.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeRetry means the cycle did not commit and should run again later.
	OutcomeRetry
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetry:
		return "retry"
	default:
		return "failure"
	}
}

// OutcomeOf maps a RunCycle error to a scheduler outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, usecase.ErrCycleFailed),
		errors.Is(err, usecase.ErrCycleSuperseded),
		errors.Is(err, models.ErrPersistence),
		errors.Is(err, context.DeadlineExceeded):
		return OutcomeRetry
	default:
		return OutcomeFailure
	}
}

// CycleRunner runs one monitoring cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*models.CycleReport, error)
}

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithRunOnStart runs the first cycle immediately instead of after one interval.
func WithRunOnStart(v bool) Option {
	return func(s *Scheduler) { s.runOnStart = v }
}

func WithLogger(l *applogger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithOutcomeHook is called after every scheduled run.
func WithOutcomeHook(fn func(Outcome, *models.CycleReport)) Option {
	return func(s *Scheduler) { s.hook = fn }
}

// Scheduler invokes the monitor engine on a fixed interval. Runs never overlap.
type Scheduler struct {
	cron       *gocron.Scheduler
	runner     CycleRunner
	interval   time.Duration
	runOnStart bool
	log        *applogger.Logger
	hook       func(Outcome, *models.CycleReport)

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	job    *gocron.Job
}

func New(runner CycleRunner, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		runner:   runner,
		interval: time.Hour,
		log:      applogger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the periodic job and starts the scheduler in the background.
// The job context is derived from ctx; Stop cancels it.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job != nil {
		return errors.New("scheduler already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	chain := s.cron.Every(s.interval).SingletonMode().Tag("monitor-cycle")
	if !s.runOnStart {
		chain = chain.WaitForSchedule()
	}
	job, err := chain.Do(s.tick)
	if err != nil {
		s.cancel()
		return fmt.Errorf("schedule monitor cycle: %w", err)
	}
	s.job = job
	s.cron.StartAsync()

	s.log.Info("scheduler started",
		applogger.Duration("interval_ms", s.interval),
		applogger.Bool("run_on_start", s.runOnStart),
	)
	return nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	s.RunNow(ctx)
}

// RunNow runs one cycle synchronously and reports its outcome.
func (s *Scheduler) RunNow(ctx context.Context) Outcome {
	report, err := s.runner.RunCycle(ctx)
	outcome := OutcomeOf(err)

	switch outcome {
	case OutcomeSuccess:
		s.log.Debug("scheduled cycle done")
	case OutcomeRetry:
		s.log.Warn("scheduled cycle will retry later", applogger.Error(err))
	default:
		s.log.Error("scheduled cycle failed", applogger.Error(err))
	}
	if s.hook != nil {
		s.hook(outcome, report)
	}
	return outcome
}

// NextRun returns the time of the next scheduled cycle, zero when not started.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}
