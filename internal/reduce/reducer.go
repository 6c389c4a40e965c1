package reduce

import (
	"time"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/taskflow/internal/model"
)

// Debounce keys. The resort key is shared: a toggle and a reorder within the
// same window coalesce into one resort. Edits debounce per item.
const (
	ResortKey      = "resort"
	editKeyPrefix  = "edit:"
	DefaultResort  = 100 * time.Millisecond
	DefaultEditLag = 500 * time.Millisecond
)

// EditKey returns the debounce key for persistence of one item's edits.
func EditKey(id string) string { return editKeyPrefix + id }

// Reducer is the pure state transition function. It never performs I/O; all
// side work is returned as effects for the store to run.
type Reducer struct {
	ids         IDSource
	resortDelay time.Duration
	editDelay   time.Duration
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithIDSource replaces the production UUID source.
func WithIDSource(src IDSource) Option {
	return func(r *Reducer) { r.ids = src }
}

// WithResortDelay sets the debounce window for the post-toggle resort.
func WithResortDelay(d time.Duration) Option {
	return func(r *Reducer) { r.resortDelay = d }
}

// WithEditDelay sets the debounce window for per-item edit persistence.
func WithEditDelay(d time.Duration) Option {
	return func(r *Reducer) { r.editDelay = d }
}

func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		ids:         UUIDSource{},
		resortDelay: DefaultResort,
		editDelay:   DefaultEditLag,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce maps (state, action) to (state, effects). The input state is never
// mutated; unknown actions return it unchanged.
func (r *Reducer) Reduce(s model.State, a Action) (model.State, []Effect) {
	switch act := a.(type) {
	case Load:
		return s, []Effect{FetchItems{}}

	case ItemsLoaded:
		s.Items = append([]model.Item(nil), act.Items...)
		return s, nil

	case Add:
		id := act.ID
		if id == "" {
			id = r.ids.Next()
		} else if model.IndexByID(s.Items, id) >= 0 {
			return s, nil
		}
		it := model.Item{ID: id}
		s.Items = model.InsertHead(s.Items, it)
		return s, []Effect{SaveItem{Item: it}}

	case ToggleComplete:
		idx := model.IndexByID(s.Items, act.ID)
		if idx < 0 {
			return s, nil
		}
		items := append([]model.Item(nil), s.Items...)
		items[idx].Complete = !items[idx].Complete
		s.Items = items
		return s, []Effect{
			Debounce{Key: ResortKey, Delay: r.resortDelay, Action: Resort{}},
			Debounce{Key: EditKey(act.ID), Delay: r.editDelay, Action: PersistItem{ID: act.ID}},
		}

	case EditDescription:
		idx := model.IndexByID(s.Items, act.ID)
		if idx < 0 {
			return s, nil
		}
		items := append([]model.Item(nil), s.Items...)
		items[idx].Description = norm.NFC.String(act.Text)
		s.Items = items
		return s, []Effect{
			Debounce{Key: EditKey(act.ID), Delay: r.editDelay, Action: PersistItem{ID: act.ID}},
		}

	case Delete:
		abs := r.absoluteIndices(s, act.Indices)
		kept, removed := model.RemoveAt(s.Items, abs)
		if len(removed) == 0 {
			return s, nil
		}
		s.Items = kept
		effects := make([]Effect, 0, len(removed))
		for _, it := range removed {
			effects = append(effects, DeleteItem{ID: it.ID})
		}
		return s, effects

	case ClearCompleted:
		var completed []int
		for i, it := range s.Items {
			if it.Complete {
				completed = append(completed, i)
			}
		}
		kept, removed := model.RemoveAt(s.Items, completed)
		if len(removed) == 0 {
			return s, nil
		}
		s.Items = kept
		effects := make([]Effect, 0, len(removed))
		for _, it := range removed {
			effects = append(effects, DeleteItem{ID: it.ID})
		}
		return s, effects

	case Reorder:
		from, to, ok := model.TranslateIndices(s.Items, s.Filter, act.FromIndices, act.ToIndex)
		if !ok {
			return s, nil
		}
		s.Items = model.Move(s.Items, from, to)
		return s, []Effect{
			Debounce{Key: ResortKey, Delay: r.resortDelay, Action: Resort{}},
		}

	case PickFilter:
		s.Filter = act.Filter
		return s, nil

	case SetEditing:
		s.Editing = act.Editing
		return s, nil

	case Resort:
		s.Items = model.StablePartition(s.Items)
		return s, nil

	case PersistItem:
		idx := model.IndexByID(s.Items, act.ID)
		if idx < 0 {
			// Item deleted while the debounce was pending.
			return s, nil
		}
		return s, []Effect{UpdateItem{ID: act.ID, Item: s.Items[idx]}}
	}

	return s, nil
}

// absoluteIndices translates filtered-list positions to full-list positions
// under the active filter. With FilterAll the positions are already absolute.
func (r *Reducer) absoluteIndices(s model.State, filtered []int) []int {
	if s.Filter == model.FilterAll || s.Filter == "" {
		return filtered
	}
	view := s.Filtered()
	abs := make([]int, 0, len(filtered))
	for _, fi := range filtered {
		if fi < 0 || fi >= len(view) {
			continue
		}
		if i := model.IndexByID(s.Items, view[fi].ID); i >= 0 {
			abs = append(abs, i)
		}
	}
	return abs
}
