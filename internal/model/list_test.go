package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemList(ids ...string) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, Item{ID: id, Description: "item " + id})
	}
	return out
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFilterItems(t *testing.T) {
	items := []Item{
		{ID: "a"},
		{ID: "b", Complete: true},
		{ID: "c"},
		{ID: "d", Complete: true},
	}

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"a", "b", "c", "d"}},
		{FilterActive, []string{"a", "c"}},
		{FilterCompleted, []string{"b", "d"}},
	}

	for _, tc := range tests {
		t.Run(string(tc.filter), func(t *testing.T) {
			assert.Equal(t, tc.want, ids(FilterItems(items, tc.filter)))
		})
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("completed")
	require.NoError(t, err)
	assert.Equal(t, FilterCompleted, f)

	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	_, err = ParseFilter("done")
	require.Error(t, err)
}

func TestInsertHead(t *testing.T) {
	items := itemList("a", "b")
	got := InsertHead(items, Item{ID: "new"})

	assert.Equal(t, []string{"new", "a", "b"}, ids(got))
	// Original list untouched.
	assert.Equal(t, []string{"a", "b"}, ids(items))
}

func TestRemoveAt(t *testing.T) {
	items := itemList("a", "b", "c")

	kept, removed := RemoveAt(items, []int{1})
	assert.Equal(t, []string{"a", "c"}, ids(kept))
	assert.Equal(t, []string{"b"}, ids(removed))

	kept, removed = RemoveAt(items, []int{2, 0})
	assert.Equal(t, []string{"b"}, ids(kept))
	assert.Equal(t, []string{"a", "c"}, ids(removed))

	kept, removed = RemoveAt(items, []int{-1, 7})
	assert.Equal(t, []string{"a", "b", "c"}, ids(kept))
	assert.Empty(t, removed)
}

func TestMove(t *testing.T) {
	tests := []struct {
		name string
		from []int
		to   int
		want []string
	}{
		// The destination is a position in the result list, counted after the
		// moved block has been removed: moving 0 to 2 puts "a" at index 2 of
		// the outcome, not before the element that used to sit at index 2.
		{"single forward", []int{0}, 2, []string{"b", "c", "a", "d"}},
		{"single backward", []int{3}, 0, []string{"d", "a", "b", "c"}},
		{"to end", []int{1}, 3, []string{"a", "c", "d", "b"}},
		{"noop same position", []int{2}, 2, []string{"a", "b", "c", "d"}},
		{"block of two", []int{0, 1}, 2, []string{"c", "d", "a", "b"}},
		{"non-adjacent block", []int{0, 2}, 1, []string{"b", "a", "c", "d"}},
		{"clamped destination", []int{0}, 99, []string{"b", "c", "d", "a"}},
		{"invalid sources ignored", []int{-2, 9}, 1, []string{"a", "b", "c", "d"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items := itemList("a", "b", "c", "d")
			got := Move(items, tc.from, tc.to)
			assert.Equal(t, tc.want, ids(got))
			assert.Equal(t, []string{"a", "b", "c", "d"}, ids(items), "input must not be mutated")
		})
	}
}

func TestMoveIdempotentNoop(t *testing.T) {
	items := itemList("a", "b", "c")
	once := Move(items, []int{1}, 1)
	twice := Move(once, []int{1}, 1)
	assert.Equal(t, ids(items), ids(once))
	assert.Equal(t, ids(once), ids(twice))
}

func TestStablePartition(t *testing.T) {
	items := []Item{
		{ID: "a", Complete: true},
		{ID: "b"},
		{ID: "c", Complete: true},
		{ID: "d"},
	}

	got := StablePartition(items)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(got))

	// Idempotent: partitioning again changes nothing.
	again := StablePartition(got)
	assert.Equal(t, ids(got), ids(again))
}

func TestTranslateIndices(t *testing.T) {
	// Four items, last two complete.
	items := []Item{
		{ID: "a"},
		{ID: "b"},
		{ID: "c", Complete: true},
		{ID: "d", Complete: true},
	}

	t.Run("source resolves through item id", func(t *testing.T) {
		from, to, ok := TranslateIndices(items, FilterCompleted, []int{0}, 1)
		require.True(t, ok)
		assert.Equal(t, []int{2}, from)
		assert.Equal(t, 3, to)
	})

	t.Run("destination at filtered length clamps to full list end", func(t *testing.T) {
		from, to, ok := TranslateIndices(items, FilterCompleted, []int{0}, 2)
		require.True(t, ok)
		assert.Equal(t, []int{2}, from)
		assert.Equal(t, 4, to)

		// The concrete permutation for moving filtered 0 past filtered end.
		got := Move(items, from, to)
		assert.Equal(t, []string{"a", "b", "d", "c"}, ids(got))
	})

	t.Run("out of range source fails", func(t *testing.T) {
		_, _, ok := TranslateIndices(items, FilterCompleted, []int{5}, 0)
		assert.False(t, ok)
	})
}

func TestUniqueIDs(t *testing.T) {
	assert.True(t, UniqueIDs(itemList("a", "b", "c")))
	assert.False(t, UniqueIDs(itemList("a", "b", "a")))
	assert.True(t, UniqueIDs(nil))
}

func TestStateCloneIsIndependent(t *testing.T) {
	s := State{Items: itemList("a", "b"), Filter: FilterActive}
	c := s.Clone()
	c.Items[0].Description = "changed"

	assert.Equal(t, "item a", s.Items[0].Description)
	assert.Equal(t, FilterActive, c.Filter)
}
