package reduce

import (
	"time"

	"git.home.luguber.info/inful/taskflow/internal/model"
)

// Effect is an asynchronous task requested by the reducer. Effects are plain
// data; the store interprets them. Results re-enter the reducer as actions.
type Effect interface {
	Kind() string
}

// FetchItems asks the store to read the full durable mirror.
// Success re-enters as ItemsLoaded; failure leaves state unchanged and is
// surfaced as a PersistFailed event.
type FetchItems struct{}

func (FetchItems) Kind() string { return "fetch" }

// SaveItem asks the store to create the item's record in the gateway.
type SaveItem struct {
	Item model.Item
}

func (SaveItem) Kind() string { return "create" }

// UpdateItem asks the store to update the item's record in the gateway.
type UpdateItem struct {
	ID   string
	Item model.Item
}

func (UpdateItem) Kind() string { return "update" }

// DeleteItem asks the store to delete the item's record from the gateway.
type DeleteItem struct {
	ID string
}

func (DeleteItem) Kind() string { return "delete" }

// Debounce asks the store to deliver the wrapped action after the delay.
// Scheduling a new Debounce for the same key cancels the pending one and
// restarts the delay; only the latest survives.
type Debounce struct {
	Key    string
	Delay  time.Duration
	Action Action
}

func (Debounce) Kind() string { return "debounce" }
