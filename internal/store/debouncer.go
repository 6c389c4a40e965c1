package store

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/taskflow/internal/reduce"
)

// Debouncer coalesces repeated scheduled work per logical key: scheduling
// under a key that already has a pending entry cancels that entry and
// restarts the delay, so only the latest request in a burst fires.
//
// It is the explicit cancellation-token map the store uses for the delayed
// resort ("resort") and per-item edit persistence ("edit:<id>").
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]*pendingEntry
	fire    func(key string, a reduce.Action)
}

type pendingEntry struct {
	timer  *time.Timer
	action reduce.Action
}

// NewDebouncer creates a debouncer that delivers elapsed actions through fire.
// fire is called from the timer goroutine; it must not block indefinitely.
func NewDebouncer(fire func(key string, a reduce.Action)) *Debouncer {
	return &Debouncer{
		pending: make(map[string]*pendingEntry),
		fire:    fire,
	}
}

// Schedule arms (or re-arms) the entry for key. Any pending entry for the
// same key is canceled first. canceled reports whether a prior entry existed.
func (d *Debouncer) Schedule(key string, delay time.Duration, a reduce.Action) (canceled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
		canceled = true
	}

	entry := &pendingEntry{action: a}
	entry.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		// A newer schedule or a cancel may have raced the timer firing;
		// only the current token is allowed through.
		if d.pending[key] != entry {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		d.fire(key, entry.action)
	})
	d.pending[key] = entry
	return canceled
}

// Cancel drops the pending entry for key, if any.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.pending[key]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(d.pending, key)
	return true
}

// TakeAll cancels every pending timer and returns the pending actions so the
// caller can deliver them immediately. Used by Flush.
func (d *Debouncer) TakeAll() map[string]reduce.Action {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]reduce.Action, len(d.pending))
	for key, entry := range d.pending {
		entry.timer.Stop()
		out[key] = entry.action
	}
	d.pending = make(map[string]*pendingEntry)
	return out
}

// CancelAll drops every pending entry without firing.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, entry := range d.pending {
		entry.timer.Stop()
		delete(d.pending, key)
	}
}

// PendingCount returns the number of armed entries. Tests and diagnostics.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
