// Package reduce contains the unidirectional state transition logic: actions
// describe intents, effects describe requested side work, and the Reducer
// maps (state, action) to (state, effects) without performing any I/O itself.
package reduce

import "git.home.luguber.info/inful/taskflow/internal/model"

// Action is a discrete user or system intent fed into the reducer. Name is
// used for logging and metrics labels.
type Action interface {
	Name() string
}

// Load asks for the durable mirror to be fetched and, on success, to replace
// the in-memory list wholesale. Issued once at startup.
type Load struct{}

func (Load) Name() string { return "load" }

// ItemsLoaded carries the result of a Load fetch back into the reducer.
type ItemsLoaded struct {
	Items []model.Item
}

func (ItemsLoaded) Name() string { return "items_loaded" }

// Add inserts a new empty item at the head of the list. ID may be supplied
// by the caller when it needs to refer to the item afterwards (the HTTP
// handler does); when empty, the reducer's id source assigns one. An Add
// whose ID already exists is a no-op, preserving id uniqueness.
type Add struct {
	ID string
}

func (Add) Name() string { return "add" }

// ToggleComplete flips the completeness of the item with the given id.
type ToggleComplete struct {
	ID string
}

func (ToggleComplete) Name() string { return "toggle_complete" }

// EditDescription sets the description of the item with the given id.
type EditDescription struct {
	ID   string
	Text string
}

func (EditDescription) Name() string { return "edit_description" }

// Delete removes the items at the given filtered-list positions.
type Delete struct {
	Indices []int
}

func (Delete) Name() string { return "delete" }

// ClearCompleted removes every item with Complete set.
type ClearCompleted struct{}

func (ClearCompleted) Name() string { return "clear_completed" }

// Reorder moves the items at the given filtered-list positions so the block
// lands at the filtered destination position.
type Reorder struct {
	FromIndices []int
	ToIndex     int
}

func (Reorder) Name() string { return "reorder" }

// PickFilter sets the active display filter. No other state change.
type PickFilter struct {
	Filter model.Filter
}

func (PickFilter) Name() string { return "pick_filter" }

// SetEditing toggles the list's editing mode flag.
type SetEditing struct {
	Editing bool
}

func (SetEditing) Name() string { return "set_editing" }

// Resort stably partitions the list, complete items sinking to the bottom.
// Normally delivered through a debounced effect rather than dispatched
// directly.
type Resort struct{}

func (Resort) Name() string { return "resort" }

// PersistItem asks for the current state of one item to be written to the
// gateway. Delivered by the per-item edit debounce; the item's state at
// delivery time wins.
type PersistItem struct {
	ID string
}

func (PersistItem) Name() string { return "persist_item" }
