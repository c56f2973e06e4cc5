package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RsiWatch/internal/scheduler"
	"RsiWatch/pkg/config"
	xhttp "RsiWatch/pkg/http"
	applogger "RsiWatch/pkg/logger"
)

type closer struct {
	name string
	fn   func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	scheduler  *scheduler.Scheduler
	closers    []closer
}

// New creates a new App. sched may be nil when periodic monitoring is disabled.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, sched *scheduler.Scheduler) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		httpServer: srv,
		scheduler:  sched,
	}
}

// OnShutdown registers fn to run after the HTTP server and scheduler stopped.
// Closers run in registration order.
func (a *App) OnShutdown(name string, fn func() error) {
	if fn != nil {
		a.closers = append(a.closers, closer{name: name, fn: fn})
	}
}

// Run starts the application and blocks until SIGINT/SIGTERM or ctx ends.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			a.shutdown()
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	a.log.Info("rsiwatch started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("policy", a.cfg.Monitor.AggregationPolicy),
		applogger.Bool("scheduler", a.scheduler != nil),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	a.shutdown()
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+time.Second)
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	for _, c := range a.closers {
		if err := c.fn(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
}
