// Package events carries control-flow events between the store, the daemon
// surfaces, and tests. Nothing here is durable; the SQLite gateway is the
// durable mirror.
package events

import (
	"context"
	"reflect"
	"sync"

	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
)

// Bus is a typed in-process event bus. Subscriptions are per concrete event
// type; Publish blocks until every subscriber of that type has accepted the
// event or the context is canceled.
type Bus struct {
	mu     sync.Mutex
	subs   map[reflect.Type]map[uint64]*subscription
	nextID uint64
	closed bool
}

type subscription struct {
	deliver func(ctx context.Context, evt any) error
	stop    func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[reflect.Type]map[uint64]*subscription)}
}

// Subscribe registers a buffered channel for events of exactly type T. The
// returned func removes the subscription and closes the channel; calling it
// more than once is safe.
func Subscribe[T any](b *Bus, buffer int) (<-chan T, func()) {
	eventType := reflect.TypeFor[T]()
	ch := make(chan T, buffer)

	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() { close(ch) })
	}

	sub := &subscription{
		deliver: func(ctx context.Context, evt any) error {
			select {
			case ch <- evt.(T):
				return nil
			case <-ctx.Done():
				return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "event publish canceled").
					WithContext("event_type", eventType.String()).
					Build()
			}
		},
		stop: stop,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		stop()
		return ch, func() {}
	}
	b.nextID++
	id := b.nextID
	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[uint64]*subscription)
	}
	b.subs[eventType][id] = sub
	b.mu.Unlock()

	var unsubOnce sync.Once
	unsubscribe := func() {
		unsubOnce.Do(func() {
			b.mu.Lock()
			if typeSubs, ok := b.subs[eventType]; ok {
				delete(typeSubs, id)
				if len(typeSubs) == 0 {
					delete(b.subs, eventType)
				}
			}
			b.mu.Unlock()
			stop()
		})
	}
	return ch, unsubscribe
}

// SubscriberCount returns the number of active subscriptions for type T.
// Intended for tests and diagnostics.
func SubscriberCount[T any](b *Bus) int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[reflect.TypeFor[T]()])
}

// Publish delivers evt to every subscriber of its concrete type.
func (b *Bus) Publish(ctx context.Context, evt any) error {
	if evt == nil {
		return ferrors.ValidationError("event cannot be nil").Build()
	}
	if ctx == nil {
		return ferrors.ValidationError("context cannot be nil").Build()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ferrors.RuntimeError("event bus is closed").Build()
	}
	typeSubs := b.subs[reflect.TypeOf(evt)]
	targets := make([]*subscription, 0, len(typeSubs))
	for _, s := range typeSubs {
		targets = append(targets, s)
	}
	b.mu.Unlock()

	for _, s := range targets {
		if err := s.deliver(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Close drops all subscriptions and closes their channels. Publish after
// Close returns a runtime error.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var toStop []*subscription
	for _, typeSubs := range b.subs {
		for _, s := range typeSubs {
			toStop = append(toStop, s)
		}
	}
	b.subs = make(map[reflect.Type]map[uint64]*subscription)
	b.mu.Unlock()

	for _, s := range toStop {
		s.stop()
	}
}
