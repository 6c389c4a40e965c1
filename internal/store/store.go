// Package store hosts the single-writer state owner: every mutation is
// serialized through one loop goroutine that applies the reducer and runs
// the resulting effects as cancellable asynchronous tasks. Effect results
// re-enter the same loop as new actions; no state is written from anywhere
// else.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/taskflow/internal/events"
	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
	"git.home.luguber.info/inful/taskflow/internal/metrics"
	"git.home.luguber.info/inful/taskflow/internal/model"
	"git.home.luguber.info/inful/taskflow/internal/persist"
	"git.home.luguber.info/inful/taskflow/internal/reduce"
)

const dispatchBuffer = 64

// Store owns the list state. Readers get immutable snapshots; writers go
// through Dispatch.
type Store struct {
	reducer *reduce.Reducer
	gateway persist.Gateway
	bus     *events.Bus
	rec     metrics.Recorder

	actionCh chan reduce.Action
	syncCh   chan chan struct{}
	snapshot atomic.Pointer[model.State]

	deb      *Debouncer
	effectWG sync.WaitGroup

	readyOnce sync.Once
	ready     chan struct{}
	runCtx    atomic.Pointer[context.Context]
}

// Option configures a Store.
type Option func(*Store)

// WithBus sets the event bus used for StateChanged/PersistFailed events.
func WithBus(bus *events.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(s *Store) { s.rec = rec }
}

// WithReducer replaces the default reducer (tests use this to inject a
// sequential id source and short debounce windows).
func WithReducer(r *reduce.Reducer) Option {
	return func(s *Store) { s.reducer = r }
}

// New creates a Store over the given persistence gateway. The gateway is an
// injected dependency; the store never reaches for process-wide handles.
func New(gateway persist.Gateway, opts ...Option) (*Store, error) {
	if gateway == nil {
		return nil, ferrors.ValidationError("gateway is required").Build()
	}

	s := &Store{
		reducer:  reduce.NewReducer(),
		gateway:  gateway,
		bus:      events.NewBus(),
		rec:      metrics.NoopRecorder{},
		actionCh: make(chan reduce.Action, dispatchBuffer),
		syncCh:   make(chan chan struct{}),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.deb = NewDebouncer(s.onDebounceFired)

	initial := model.State{Filter: model.FilterAll}
	s.snapshot.Store(&initial)
	return s, nil
}

// Bus returns the event bus the store publishes on.
func (s *Store) Bus() *events.Bus { return s.bus }

// Ready is closed once Run has initialized. Primarily for tests and
// deterministic startup sequencing.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// State returns a copy of the current state snapshot.
func (s *Store) State() model.State {
	return s.snapshot.Load().Clone()
}

// Dispatch feeds an action into the serialized mutation path.
func (s *Store) Dispatch(ctx context.Context, a reduce.Action) error {
	if a == nil {
		return ferrors.ValidationError("action cannot be nil").Build()
	}
	select {
	case s.actionCh <- a:
		return nil
	case <-ctx.Done():
		return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "dispatch canceled").
			WithContext("action", a.Name()).
			Build()
	}
}

// Run executes the store loop until ctx is canceled. It must be called
// exactly once.
func (s *Store) Run(ctx context.Context) error {
	if ctx == nil {
		return ferrors.ValidationError("context cannot be nil").Build()
	}
	s.runCtx.Store(&ctx)
	s.readyOnce.Do(func() { close(s.ready) })

	for {
		select {
		case <-ctx.Done():
			s.deb.CancelAll()
			return nil
		case a := <-s.actionCh:
			s.step(ctx, a)
		case barrier := <-s.syncCh:
			// Drain actions already queued ahead of the barrier request.
			for {
				select {
				case a := <-s.actionCh:
					s.step(ctx, a)
					continue
				default:
				}
				break
			}
			close(barrier)
		}
	}
}

// Flush forces pending debounced work to fire immediately, waits until the
// loop has applied it, then waits for in-flight persistence effects. One-shot
// CLI commands use it so writes land before the process exits.
func (s *Store) Flush(ctx context.Context) error {
	for key, a := range s.deb.TakeAll() {
		s.rec.IncDebounceFired(key)
		if err := s.Dispatch(ctx, a); err != nil {
			return err
		}
	}

	if err := s.Sync(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.effectWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "flush canceled").Build()
	}

	// Effects completing above may have dispatched follow-up actions
	// (e.g. a fetch result); apply them too before returning.
	return s.Sync(ctx)
}

// Sync waits until the loop has applied every action queued before the call.
func (s *Store) Sync(ctx context.Context) error {
	req := make(chan struct{})
	select {
	case s.syncCh <- req:
	case <-ctx.Done():
		return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "sync canceled").Build()
	}
	select {
	case <-req:
		return nil
	case <-ctx.Done():
		return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "sync canceled").Build()
	}
}

// step applies one action and runs its effects. Only the Run goroutine calls
// this.
func (s *Store) step(ctx context.Context, a reduce.Action) {
	s.rec.IncAction(a.Name())

	cur := s.snapshot.Load()
	next, effects := s.reducer.Reduce(*cur, a)

	changed := !statesEqual(*cur, next)
	if changed {
		published := next.Clone()
		s.snapshot.Store(&published)
		s.rec.SetItemCount(len(published.Items))

		evt := events.StateChanged{
			Action:    a.Name(),
			ItemCount: len(published.Items),
			ChangedAt: time.Now(),
		}
		if err := s.bus.Publish(ctx, evt); err != nil {
			slog.Debug("State change publish skipped", "action", a.Name(), "error", err)
		}
	}

	for _, eff := range effects {
		s.runEffect(ctx, eff)
	}
}

func (s *Store) runEffect(ctx context.Context, eff reduce.Effect) {
	switch e := eff.(type) {
	case reduce.Debounce:
		if s.deb.Schedule(e.Key, e.Delay, e.Action) {
			s.rec.IncDebounceCanceled(e.Key)
		}

	case reduce.FetchItems:
		s.spawn(func() {
			items, err := s.gateway.FindAll(ctx)
			if err != nil {
				// State stays unchanged on fetch failure; the failure is
				// surfaced rather than swallowed.
				s.reportPersistFailure(ctx, "fetch", "", err)
				return
			}
			s.rec.IncPersistOp("fetch", metrics.ResultSuccess)
			if err := s.Dispatch(ctx, reduce.ItemsLoaded{Items: items}); err != nil {
				slog.Warn("Dropping fetch result", "error", err)
			}
		})

	case reduce.SaveItem:
		s.spawn(func() {
			if err := s.gateway.Create(ctx, e.Item); err != nil {
				s.reportPersistFailure(ctx, "create", e.Item.ID, err)
				return
			}
			s.rec.IncPersistOp("create", metrics.ResultSuccess)
		})

	case reduce.UpdateItem:
		s.spawn(func() {
			err := s.gateway.Update(ctx, e.ID, e.Item)
			if ferrors.IsNotFound(err) {
				// The record may never have been created (the initial create
				// is rejected while the description is empty); a late update
				// with real content creates it instead.
				err = s.gateway.Create(ctx, e.Item)
			}
			if err != nil {
				s.reportPersistFailure(ctx, "update", e.ID, err)
				return
			}
			s.rec.IncPersistOp("update", metrics.ResultSuccess)
		})

	case reduce.DeleteItem:
		s.spawn(func() {
			err := s.gateway.Delete(ctx, e.ID)
			if ferrors.IsNotFound(err) {
				// Never persisted; nothing to delete.
				err = nil
			}
			if err != nil {
				s.reportPersistFailure(ctx, "delete", e.ID, err)
				return
			}
			s.rec.IncPersistOp("delete", metrics.ResultSuccess)
		})

	default:
		slog.Warn("Unknown effect", "kind", eff.Kind())
	}
}

// spawn runs fn as a tracked effect goroutine. The WaitGroup is incremented
// on the loop goroutine, before Flush can observe it.
func (s *Store) spawn(fn func()) {
	s.effectWG.Add(1)
	go func() {
		defer s.effectWG.Done()
		fn()
	}()
}

func (s *Store) onDebounceFired(key string, a reduce.Action) {
	s.rec.IncDebounceFired(key)

	ctxp := s.runCtx.Load()
	if ctxp == nil {
		return
	}
	ctx := *ctxp

	if err := s.Dispatch(ctx, a); err != nil {
		slog.Debug("Dropping debounced action", "key", key, "error", err)
		return
	}
	evt := events.DebounceFired{Key: key, FiredAt: time.Now()}
	if err := s.bus.Publish(ctx, evt); err != nil {
		slog.Debug("Debounce event publish skipped", "key", key, "error", err)
	}
}

func (s *Store) reportPersistFailure(ctx context.Context, op, itemID string, err error) {
	s.rec.IncPersistOp(op, metrics.ResultFailure)
	slog.Error("Persistence effect failed", "op", op, "item_id", itemID, "error", err)

	evt := events.PersistFailed{Op: op, ItemID: itemID, Err: err, FailedAt: time.Now()}
	if perr := s.bus.Publish(ctx, evt); perr != nil {
		slog.Debug("Persist failure event publish skipped", "op", op, "error", perr)
	}
}

func statesEqual(a, b model.State) bool {
	return a.Filter == b.Filter &&
		a.Editing == b.Editing &&
		slices.Equal(a.Items, b.Items)
}
