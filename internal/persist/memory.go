package persist

import (
	"context"
	"strings"
	"sync"

	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
	"git.home.luguber.info/inful/taskflow/internal/model"
)

// MemoryGateway is an in-memory Gateway for tests. It keeps insertion order,
// applies the same validation as the SQLite gateway, tracks call counts, and
// supports per-operation error injection.
type MemoryGateway struct {
	mu    sync.RWMutex
	order []string
	items map[string]model.Item
	calls GatewayCalls

	// Error injection for tests.
	CreateErr  error
	UpdateErr  error
	FindAllErr error
	FindOneErr error
	DeleteErr  error
}

// GatewayCalls tracks method invocations for test verification.
type GatewayCalls struct {
	Create  int
	Update  int
	FindAll int
	FindOne int
	Delete  int
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{items: make(map[string]model.Item)}
}

// Seed inserts items directly, bypassing validation. Test setup only.
func (m *MemoryGateway) Seed(items ...model.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		if _, ok := m.items[it.ID]; !ok {
			m.order = append(m.order, it.ID)
		}
		m.items[it.ID] = it
	}
}

// Calls returns a copy of the call counters.
func (m *MemoryGateway) Calls() GatewayCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MemoryGateway) Create(ctx context.Context, item model.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Create++

	if m.CreateErr != nil {
		return m.CreateErr
	}
	if strings.TrimSpace(item.Description) == "" {
		return ferrors.ValidationError("description cannot be empty").
			WithContext("item_id", item.ID).
			Build()
	}
	if _, ok := m.items[item.ID]; ok {
		return ferrors.StorageError("item already exists").
			WithContext("item_id", item.ID).
			Build()
	}

	m.order = append(m.order, item.ID)
	m.items[item.ID] = item
	return nil
}

func (m *MemoryGateway) Update(ctx context.Context, id string, item model.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Update++

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.items[id]; !ok {
		return ferrors.NotFoundError("item not found").
			WithContext("item_id", id).
			Build()
	}

	item.ID = id
	m.items[id] = item
	return nil
}

func (m *MemoryGateway) FindAll(ctx context.Context) ([]model.Item, error) {
	m.mu.Lock()
	m.calls.FindAll++
	err := m.FindAllErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Item, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out, nil
}

func (m *MemoryGateway) FindOne(ctx context.Context, id string) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.FindOne++

	if m.FindOneErr != nil {
		return model.Item{}, m.FindOneErr
	}
	it, ok := m.items[id]
	if !ok {
		return model.Item{}, ferrors.NotFoundError("item not found").
			WithContext("item_id", id).
			Build()
	}
	return it, nil
}

func (m *MemoryGateway) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Delete++

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.items[id]; !ok {
		return ferrors.NotFoundError("item not found").
			WithContext("item_id", id).
			Build()
	}

	delete(m.items, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryGateway) Close() error { return nil }
