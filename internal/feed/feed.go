// Package feed publishes list changes to an external stream so other systems
// can follow the to-do list without polling the HTTP API. Events originate on
// the in-process bus and are re-encoded as JSON envelopes.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/taskflow/internal/events"
)

// Sink is where encoded feed events go. The production sink is JetStream;
// tests substitute an in-memory one.
type Sink interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// Event is the wire envelope for a single feed entry.
type Event struct {
	Kind      string    `json:"kind"`
	Action    string    `json:"action,omitempty"`
	ItemCount int       `json:"item_count,omitempty"`
	Op        string    `json:"op,omitempty"`
	ItemID    string    `json:"item_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	KindStateChanged  = "state_changed"
	KindPersistFailed = "persist_failed"
)

// Publisher forwards bus events to a sink.
type Publisher struct {
	bus     *events.Bus
	sink    Sink
	subject string
}

func NewPublisher(bus *events.Bus, sink Sink, subject string) *Publisher {
	return &Publisher{bus: bus, sink: sink, subject: subject}
}

// Run pumps bus events into the sink until ctx is canceled or the bus closes.
// Publish errors are logged and do not stop the pump; the feed is advisory
// and must never stall the store.
func (p *Publisher) Run(ctx context.Context) error {
	changes, unsubChanges := events.Subscribe[events.StateChanged](p.bus, 64)
	defer unsubChanges()
	failures, unsubFailures := events.Subscribe[events.PersistFailed](p.bus, 64)
	defer unsubFailures()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-changes:
			if !ok {
				return nil
			}
			p.emit(ctx, Event{
				Kind:      KindStateChanged,
				Action:    evt.Action,
				ItemCount: evt.ItemCount,
				Timestamp: evt.ChangedAt,
			})
		case evt, ok := <-failures:
			if !ok {
				return nil
			}
			p.emit(ctx, Event{
				Kind:      KindPersistFailed,
				Op:        evt.Op,
				ItemID:    evt.ItemID,
				Error:     evt.Err.Error(),
				Timestamp: evt.FailedAt,
			})
		}
	}
}

func (p *Publisher) emit(ctx context.Context, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		slog.Error("Encode feed event", "kind", evt.Kind, "error", err)
		return
	}
	if err := p.sink.Publish(ctx, p.subject, data); err != nil {
		slog.Warn("Publish feed event", "kind", evt.Kind, "subject", p.subject, "error", err)
	}
}
