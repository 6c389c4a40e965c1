// Package persist provides the persistence gateway: a record store keyed by
// item id that mirrors the in-memory list. The in-memory state is
// authoritative for a running session; the gateway is the durable copy.
package persist

import (
	"context"

	"git.home.luguber.info/inful/taskflow/internal/model"
)

// Gateway is the contract the store's effects run against. All operations
// are asynchronous from the reducer's point of view and may fail.
type Gateway interface {
	// Create inserts a new record. Fails with a validation error when the
	// description is empty, and with an already-exists storage error when
	// the id is taken.
	Create(ctx context.Context, item model.Item) error

	// Update replaces the record with the given id.
	// Returns a not_found error when no such record exists.
	Update(ctx context.Context, id string, item model.Item) error

	// FindAll returns every record in insertion order.
	FindAll(ctx context.Context) ([]model.Item, error)

	// FindOne returns the record with the given id, or a not_found error.
	FindOne(ctx context.Context, id string) (model.Item, error)

	// Delete removes the record with the given id.
	// Returns a not_found error when no such record exists.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the gateway.
	Close() error
}
