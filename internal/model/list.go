package model

import "slices"

// FilterItems returns the items matching the filter, order preserved.
func FilterItems(items []Item, f Filter) []Item {
	if f == FilterAll || f == "" {
		return append([]Item(nil), items...)
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}

// InsertHead returns a new list with the item prepended. Relative order of
// the existing items is preserved.
func InsertHead(items []Item, it Item) []Item {
	out := make([]Item, 0, len(items)+1)
	out = append(out, it)
	return append(out, items...)
}

// IndexByID returns the absolute position of the item with the given id,
// or -1 when absent.
func IndexByID(items []Item, id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}

// RemoveAt returns a new list without the items at the given absolute
// positions, plus the removed items in their original relative order.
// Out-of-range and duplicate indices are ignored.
func RemoveAt(items []Item, indices []int) (kept, removed []Item) {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(items) {
			drop[i] = true
		}
	}
	kept = make([]Item, 0, len(items)-len(drop))
	removed = make([]Item, 0, len(drop))
	for i, it := range items {
		if drop[i] {
			removed = append(removed, it)
		} else {
			kept = append(kept, it)
		}
	}
	return kept, removed
}

// Move returns a new list where the items at the given absolute positions are
// extracted (keeping their relative order) and reinserted as a block so that
// the block starts at position to in the resulting list. A move of an item
// onto its own position is a no-op. Out-of-range source indices are ignored;
// to is clamped to the end of the shortened list.
func Move(items []Item, from []int, to int) []Item {
	src := make([]int, 0, len(from))
	for _, i := range from {
		if i >= 0 && i < len(items) {
			src = append(src, i)
		}
	}
	if len(src) == 0 {
		return append([]Item(nil), items...)
	}
	slices.Sort(src)
	src = slices.Compact(src)

	moving := make([]Item, 0, len(src))
	for _, i := range src {
		moving = append(moving, items[i])
	}

	kept, _ := RemoveAt(items, src)

	if to > len(kept) {
		to = len(kept)
	}
	if to < 0 {
		to = 0
	}

	out := make([]Item, 0, len(items))
	out = append(out, kept[:to]...)
	out = append(out, moving...)
	return append(out, kept[to:]...)
}

// StablePartition reorders the list so that every incomplete item precedes
// every complete item, preserving relative order within each group. The
// result is idempotent: partitioning an already-partitioned list returns an
// equal list.
func StablePartition(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.Complete {
			out = append(out, it)
		}
	}
	for _, it := range items {
		if it.Complete {
			out = append(out, it)
		}
	}
	return out
}

// TranslateIndices maps filtered-list move coordinates onto absolute
// positions in the full list. Source positions resolve through the id of the
// item at each filtered position. The destination resolves the same way,
// except that a destination equal to the filtered list's length clamps to the
// full list's end. ok is false when any source position is out of range.
func TranslateIndices(items []Item, f Filter, fromFiltered []int, toFiltered int) (from []int, to int, ok bool) {
	filtered := FilterItems(items, f)

	from = make([]int, 0, len(fromFiltered))
	for _, fi := range fromFiltered {
		if fi < 0 || fi >= len(filtered) {
			return nil, 0, false
		}
		abs := IndexByID(items, filtered[fi].ID)
		if abs < 0 {
			return nil, 0, false
		}
		from = append(from, abs)
	}

	switch {
	case toFiltered < 0:
		to = 0
	case toFiltered >= len(filtered):
		to = len(items)
	default:
		to = IndexByID(items, filtered[toFiltered].ID)
	}
	return from, to, true
}

// UniqueIDs reports whether every item id in the list is distinct.
func UniqueIDs(items []Item) bool {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return false
		}
		seen[it.ID] = true
	}
	return true
}
