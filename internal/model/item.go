// Package model holds the to-do list data model and the pure list operations
// the reducer is built from. Nothing in this package performs I/O.
package model

import "fmt"

// Item is a single to-do entry. Identity is the ID; equality for list
// diffing is structural.
type Item struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Complete    bool   `json:"complete"`
}

// Filter selects a subset of items for display without altering the
// underlying storage order.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter converts a string into a Filter.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterAll, FilterActive, FilterCompleted:
		return Filter(s), nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Matches reports whether the item passes the filter predicate.
func (f Filter) Matches(it Item) bool {
	switch f {
	case FilterActive:
		return !it.Complete
	case FilterCompleted:
		return it.Complete
	default:
		return true
	}
}

// State is the authoritative in-memory list state. The store owns it
// exclusively; views hold only read projections, and the persistence gateway
// holds a durable mirror.
type State struct {
	Items   []Item
	Filter  Filter
	Editing bool
}

// Filtered returns the items selected by the active filter, order preserved.
func (s State) Filtered() []Item {
	return FilterItems(s.Items, s.Filter)
}

// Clone returns a deep copy of the state. Snapshots handed to readers must
// not share the items slice with the reducer's working copy.
func (s State) Clone() State {
	out := s
	out.Items = append([]Item(nil), s.Items...)
	return out
}
