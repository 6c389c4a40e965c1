package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/taskflow/internal/model"
)

func testReducer() *Reducer {
	return NewReducer(WithIDSource(NewSequentialIDs()))
}

func stateIDs(s model.State) []string {
	out := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, it.ID)
	}
	return out
}

func TestReduce_AddAssignsSequentialHeadIDs(t *testing.T) {
	r := testReducer()
	var s model.State

	var effects []Effect
	for range 3 {
		s, effects = r.Reduce(s, Add{})
		require.Len(t, effects, 1)
		require.IsType(t, SaveItem{}, effects[0])
	}

	// Each new item lands at the head; earlier items keep relative order.
	assert.Equal(t, []string{"item-3", "item-2", "item-1"}, stateIDs(s))
	assert.True(t, model.UniqueIDs(s.Items))

	for _, it := range s.Items {
		assert.Empty(t, it.Description)
		assert.False(t, it.Complete)
	}
}

func TestReduce_AddWithCallerSuppliedID(t *testing.T) {
	r := testReducer()
	var s model.State

	s, effects := r.Reduce(s, Add{ID: "chosen"})
	require.Len(t, effects, 1)
	save := effects[0].(SaveItem)
	assert.Equal(t, "chosen", save.Item.ID)
	assert.Equal(t, []string{"chosen"}, stateIDs(s))
}

func TestReduce_AddDuplicateIDIsNoop(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{{ID: "chosen", Description: "original"}}}

	next, effects := r.Reduce(s, Add{ID: "chosen"})
	assert.Empty(t, effects)
	assert.Equal(t, s.Items, next.Items)
	assert.True(t, model.UniqueIDs(next.Items))
}

func TestReduce_LoadProducesFetchEffect(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{{ID: "x"}}}

	next, effects := r.Reduce(s, Load{})
	require.Len(t, effects, 1)
	assert.IsType(t, FetchItems{}, effects[0])
	// Load itself does not touch the list; the fetch result does.
	assert.Equal(t, stateIDs(s), stateIDs(next))

	loaded, effects := r.Reduce(next, ItemsLoaded{Items: []model.Item{{ID: "a"}, {ID: "b"}}})
	assert.Empty(t, effects)
	assert.Equal(t, []string{"a", "b"}, stateIDs(loaded))
}

func TestReduce_ToggleSchedulesDebouncedResort(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{{ID: "a"}, {ID: "b"}}}

	next, effects := r.Reduce(s, ToggleComplete{ID: "a"})
	assert.True(t, next.Items[0].Complete)
	// No reordering yet: the resort arrives later through the debounce.
	assert.Equal(t, []string{"a", "b"}, stateIDs(next))

	require.Len(t, effects, 2)
	deb, ok := effects[0].(Debounce)
	require.True(t, ok)
	assert.Equal(t, ResortKey, deb.Key)
	assert.IsType(t, Resort{}, deb.Action)

	persist, ok := effects[1].(Debounce)
	require.True(t, ok)
	assert.Equal(t, EditKey("a"), persist.Key)
}

func TestReduce_ToggleUnknownIDIsNoop(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{{ID: "a"}}}

	next, effects := r.Reduce(s, ToggleComplete{ID: "ghost"})
	assert.Empty(t, effects)
	assert.Equal(t, s.Items, next.Items)
}

func TestReduce_ResortStablePartition(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{
		{ID: "a", Complete: true},
		{ID: "b"},
		{ID: "c", Complete: true},
		{ID: "d"},
	}}

	next, effects := r.Reduce(s, Resort{})
	assert.Empty(t, effects)
	assert.Equal(t, []string{"b", "d", "a", "c"}, stateIDs(next))
}

func TestReduce_EditNormalizesAndDebouncesPerItem(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{{ID: "a"}, {ID: "b"}}}

	// "e" + combining acute accent; NFC composes it to a single rune.
	next, effects := r.Reduce(s, EditDescription{ID: "b", Text: "café"})
	assert.Equal(t, "café", next.Items[1].Description)

	require.Len(t, effects, 1)
	deb, ok := effects[0].(Debounce)
	require.True(t, ok)
	assert.Equal(t, EditKey("b"), deb.Key)
	assert.Equal(t, PersistItem{ID: "b"}, deb.Action)
}

func TestReduce_PersistItemEmitsUpdateForCurrentState(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{{ID: "a", Description: "latest"}}}

	_, effects := r.Reduce(s, PersistItem{ID: "a"})
	require.Len(t, effects, 1)
	upd, ok := effects[0].(UpdateItem)
	require.True(t, ok)
	assert.Equal(t, "latest", upd.Item.Description)

	// Item deleted while the debounce was pending: nothing to write.
	_, effects = r.Reduce(model.State{}, PersistItem{ID: "a"})
	assert.Empty(t, effects)
}

func TestReduce_DeleteSecondOfThree(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	next, effects := r.Reduce(s, Delete{Indices: []int{1}})
	assert.Equal(t, []string{"a", "c"}, stateIDs(next))

	require.Len(t, effects, 1)
	assert.Equal(t, DeleteItem{ID: "b"}, effects[0])
}

func TestReduce_DeleteUnderActiveFilterTranslatesIndices(t *testing.T) {
	r := testReducer()
	s := model.State{
		Filter: model.FilterCompleted,
		Items: []model.Item{
			{ID: "a"},
			{ID: "b", Complete: true},
			{ID: "c"},
			{ID: "d", Complete: true},
		},
	}

	// Filtered view is [b d]; deleting filtered index 1 removes d.
	next, effects := r.Reduce(s, Delete{Indices: []int{1}})
	assert.Equal(t, []string{"a", "b", "c"}, stateIDs(next))
	require.Len(t, effects, 1)
	assert.Equal(t, DeleteItem{ID: "d"}, effects[0])
}

func TestReduce_ClearCompleted(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{
		{ID: "a", Complete: true},
		{ID: "b"},
		{ID: "c", Complete: true},
	}}

	next, effects := r.Reduce(s, ClearCompleted{})
	assert.Equal(t, []string{"b"}, stateIDs(next))
	require.Len(t, effects, 2)
	assert.Equal(t, DeleteItem{ID: "a"}, effects[0])
	assert.Equal(t, DeleteItem{ID: "c"}, effects[1])

	// Nothing completed: no-op, no effects.
	again, effects := r.Reduce(next, ClearCompleted{})
	assert.Empty(t, effects)
	assert.Equal(t, stateIDs(next), stateIDs(again))
}

func TestReduce_ReorderUnderCompletedFilter(t *testing.T) {
	r := testReducer()
	// Four items, last two complete; the spec's concrete translation case.
	s := model.State{
		Filter: model.FilterCompleted,
		Items: []model.Item{
			{ID: "a"},
			{ID: "b"},
			{ID: "c", Complete: true},
			{ID: "d", Complete: true},
		},
	}

	next, effects := r.Reduce(s, Reorder{FromIndices: []int{0}, ToIndex: 2})
	assert.Equal(t, []string{"a", "b", "d", "c"}, stateIDs(next))

	require.Len(t, effects, 1)
	deb, ok := effects[0].(Debounce)
	require.True(t, ok)
	assert.Equal(t, ResortKey, deb.Key)
}

func TestReduce_ReorderOutOfRangeIsNoop(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{{ID: "a"}, {ID: "b"}}}

	next, effects := r.Reduce(s, Reorder{FromIndices: []int{9}, ToIndex: 0})
	assert.Empty(t, effects)
	assert.Equal(t, stateIDs(s), stateIDs(next))
}

func TestReduce_PickFilterIdempotent(t *testing.T) {
	r := testReducer()
	s := model.State{
		Filter: model.FilterActive,
		Items:  []model.Item{{ID: "a"}, {ID: "b", Complete: true}},
	}

	next, effects := r.Reduce(s, PickFilter{Filter: model.FilterActive})
	assert.Empty(t, effects)
	assert.Equal(t, stateIDs(s), stateIDs(next))
	assert.Equal(t, model.FilterActive, next.Filter)

	next, _ = r.Reduce(next, PickFilter{Filter: model.FilterCompleted})
	assert.Equal(t, model.FilterCompleted, next.Filter)
	assert.Equal(t, stateIDs(s), stateIDs(next), "filter change must not touch items")
}

func TestReduce_SetEditing(t *testing.T) {
	r := testReducer()
	next, effects := r.Reduce(model.State{}, SetEditing{Editing: true})
	assert.Empty(t, effects)
	assert.True(t, next.Editing)
}

func TestReduce_InputStateNotMutated(t *testing.T) {
	r := testReducer()
	s := model.State{Items: []model.Item{{ID: "a"}, {ID: "b"}}}

	_, _ = r.Reduce(s, ToggleComplete{ID: "a"})
	assert.False(t, s.Items[0].Complete, "reducer must copy before writing")

	_, _ = r.Reduce(s, EditDescription{ID: "a", Text: "x"})
	assert.Empty(t, s.Items[0].Description)
}
