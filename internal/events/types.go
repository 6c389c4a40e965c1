package events

import "time"

// StateChanged is emitted by the store after every reducer step that altered
// the list (content, order, or filter).
//
// It is an orchestration event used by in-process consumers (HTTP projection,
// the change-feed publisher, tests). It is not durable.
type StateChanged struct {
	Action    string
	ItemCount int
	ChangedAt time.Time
}

// PersistFailed is emitted when an asynchronous persistence effect fails.
//
// Failures are surfaced as events rather than being silently dropped so that
// callers and tests can assert on them; the reducer's state is unaffected.
type PersistFailed struct {
	Op       string // "create", "update", "delete", "fetch"
	ItemID   string
	Err      error
	FailedAt time.Time
}

// DebounceFired is emitted when a debounced effect's delay elapses and its
// action is delivered back to the store. Intended for tests and diagnostics.
type DebounceFired struct {
	Key     string
	FiredAt time.Time
}
