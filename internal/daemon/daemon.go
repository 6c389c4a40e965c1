// Package daemon wires the long-running serve mode: the store loop, the HTTP
// surface, the periodic mirror reconciliation job, the optional change feed,
// and hot configuration reload.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/taskflow/internal/config"
	"git.home.luguber.info/inful/taskflow/internal/events"
	"git.home.luguber.info/inful/taskflow/internal/feed"
	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
	"git.home.luguber.info/inful/taskflow/internal/metrics"
	"git.home.luguber.info/inful/taskflow/internal/persist"
	"git.home.luguber.info/inful/taskflow/internal/reduce"
	"git.home.luguber.info/inful/taskflow/internal/server"
	"git.home.luguber.info/inful/taskflow/internal/store"
)

// Daemon owns every long-lived component of serve mode and their shutdown
// ordering.
type Daemon struct {
	mu  sync.RWMutex
	cfg *config.Config

	configPath string
	logLevel   *slog.LevelVar

	bus      *events.Bus
	gateway  persist.Gateway
	store    *store.Store
	server   *server.Server
	registry *prom.Registry

	scheduler    gocron.Scheduler
	reconcileJob gocron.Job
	reconciler   *Reconciler

	feedSink feed.Sink
	feedPub  *feed.Publisher

	watcher *ConfigWatcher
}

// DaemonOption configures optional daemon collaborators.
type DaemonOption func(*Daemon)

// WithGateway injects a persistence gateway, replacing the SQLite default.
func WithGateway(gw persist.Gateway) DaemonOption {
	return func(d *Daemon) { d.gateway = gw }
}

// WithFeedSink injects a feed sink, replacing the NATS default.
func WithFeedSink(sink feed.Sink) DaemonOption {
	return func(d *Daemon) { d.feedSink = sink }
}

// WithLogLevel hands the daemon the process log level so config reloads can
// adjust it.
func WithLogLevel(level *slog.LevelVar) DaemonOption {
	return func(d *Daemon) { d.logLevel = level }
}

// WithConfigPath enables the configuration file watcher for the given path.
func WithConfigPath(path string) DaemonOption {
	return func(d *Daemon) { d.configPath = path }
}

// New assembles a daemon from configuration. Nothing starts running until
// Run is called.
func New(cfg *config.Config, opts ...DaemonOption) (*Daemon, error) {
	if cfg == nil {
		return nil, ferrors.ValidationError("config is required").Build()
	}

	d := &Daemon{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}

	if d.gateway == nil {
		gw, err := persist.NewSQLiteGateway(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		d.gateway = gw
	}

	d.bus = events.NewBus()
	d.registry = prom.NewRegistry()

	reducer := reduce.NewReducer(
		reduce.WithResortDelay(cfg.Debounce.Resort.Std()),
		reduce.WithEditDelay(cfg.Debounce.Edit.Std()),
	)
	st, err := store.New(d.gateway,
		store.WithBus(d.bus),
		store.WithRecorder(metrics.NewPrometheusRecorder(d.registry)),
		store.WithReducer(reducer),
	)
	if err != nil {
		return nil, err
	}
	d.store = st
	d.reconciler = NewReconciler(st, d.gateway)
	d.server = server.New(cfg.Server, st, d.registry)

	return d, nil
}

// Store exposes the store for tests and embedding callers.
func (d *Daemon) Store() *store.Store { return d.store }

// Run starts every component and blocks until ctx is canceled or the HTTP
// server fails. Shutdown flushes pending debounced writes before closing the
// gateway.
func (d *Daemon) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The store loop gets its own context so it outlives runCtx: the shutdown
	// flush needs a live loop to drain pending debounced writes into.
	storeCtx, stopStore := context.WithCancel(context.Background())
	defer stopStore()

	storeDone := make(chan struct{})
	go func() {
		defer close(storeDone)
		_ = d.store.Run(storeCtx)
	}()
	select {
	case <-d.store.Ready():
	case <-runCtx.Done():
		return runCtx.Err()
	}

	// Hydrate the list from the durable records.
	if err := d.store.Dispatch(runCtx, reduce.Load{}); err != nil {
		return err
	}

	if err := d.startFeed(runCtx); err != nil {
		return err
	}
	if err := d.startScheduler(); err != nil {
		return err
	}
	if err := d.startWatcher(runCtx); err != nil {
		return err
	}

	slog.Info("Daemon started",
		"addr", d.cfg.Server.Addr,
		"database", d.cfg.Database.Path,
		"reconcile", d.cfg.Reconcile.Enabled,
		"feed", d.cfg.Feed.Enabled,
	)

	serveErr := d.server.Start(runCtx)

	d.shutdown(stopStore, storeDone)
	return serveErr
}

func (d *Daemon) startFeed(ctx context.Context) error {
	if !d.cfg.Feed.Enabled {
		return nil
	}
	if d.feedSink == nil {
		sink, err := feed.NewNATSSink(d.cfg.Feed)
		if err != nil {
			return err
		}
		d.feedSink = sink
	}
	d.feedPub = feed.NewPublisher(d.bus, d.feedSink, d.cfg.Feed.Subject)
	go func() { _ = d.feedPub.Run(ctx) }()
	return nil
}

func (d *Daemon) startScheduler() error {
	if !d.cfg.Reconcile.Enabled {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "create scheduler").Build()
	}
	d.scheduler = sched

	job, err := sched.NewJob(
		gocron.DurationJob(d.cfg.Reconcile.Interval.Std()),
		gocron.NewTask(d.runReconcile),
		gocron.WithName("reconcile-mirror"),
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "schedule reconcile job").Build()
	}
	d.reconcileJob = job

	sched.Start()
	return nil
}

func (d *Daemon) startWatcher(ctx context.Context) error {
	if d.configPath == "" {
		return nil
	}
	w, err := NewConfigWatcher(d.configPath, d)
	if err != nil {
		return err
	}
	d.watcher = w
	return w.Start(ctx)
}

func (d *Daemon) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := d.reconciler.Reconcile(ctx)
	if err != nil {
		slog.Error("Reconcile sweep failed", "error", err)
		return
	}
	if stats.Created+stats.Updated+stats.Deleted+stats.Skipped > 0 {
		slog.Info("Reconcile sweep",
			"created", stats.Created,
			"updated", stats.Updated,
			"deleted", stats.Deleted,
			"skipped", stats.Skipped,
		)
	}
}

func (d *Daemon) shutdown(stopStore context.CancelFunc, storeDone <-chan struct{}) {
	slog.Info("Daemon shutting down")

	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.scheduler != nil {
		if err := d.scheduler.Shutdown(); err != nil {
			slog.Error("Scheduler shutdown", "error", err)
		}
	}

	// The store loop is still alive here; only after the flush has drained
	// pending debounced writes may it be stopped.
	flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
	if err := d.store.Flush(flushCtx); err != nil {
		slog.Error("Flush on shutdown", "error", err)
	}
	cancelFlush()

	stopStore()
	<-storeDone

	if d.feedSink != nil {
		_ = d.feedSink.Close()
	}
	d.bus.Close()
	if err := d.gateway.Close(); err != nil {
		slog.Error("Close gateway", "error", err)
	}
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// ReloadConfig applies a changed configuration to the running daemon. Only
// the log level and the reconcile interval take effect without a restart;
// other changes are logged as requiring one.
func (d *Daemon) ReloadConfig(newCfg *config.Config) error {
	d.mu.Lock()
	old := d.cfg
	d.cfg = newCfg
	d.mu.Unlock()

	if d.logLevel != nil && newCfg.Logging.Level != old.Logging.Level {
		level, err := config.ParseLogLevel(newCfg.Logging.Level)
		if err != nil {
			return err
		}
		d.logLevel.Set(level)
		slog.Info("Log level updated", "level", newCfg.Logging.Level)
	}

	if d.scheduler != nil && d.reconcileJob != nil &&
		newCfg.Reconcile.Interval != old.Reconcile.Interval {
		job, err := d.scheduler.Update(
			d.reconcileJob.ID(),
			gocron.DurationJob(newCfg.Reconcile.Interval.Std()),
			gocron.NewTask(d.runReconcile),
			gocron.WithName("reconcile-mirror"),
		)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryRuntime, "update reconcile job").Build()
		}
		d.reconcileJob = job
		slog.Info("Reconcile interval updated", "interval", newCfg.Reconcile.Interval.Std().String())
	}

	if newCfg.Server.Addr != old.Server.Addr {
		slog.Warn("Server address change requires restart",
			"current", old.Server.Addr, "requested", newCfg.Server.Addr)
	}
	if newCfg.Database.Path != old.Database.Path {
		slog.Warn("Database path change requires restart",
			"current", old.Database.Path, "requested", newCfg.Database.Path)
	}
	if newCfg.Debounce != old.Debounce {
		slog.Warn("Debounce window changes require restart")
	}

	return nil
}
