package persist

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
	"git.home.luguber.info/inful/taskflow/internal/model"
)

// SQLiteGateway implements Gateway using SQLite.
type SQLiteGateway struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteGateway opens (or creates) the item store at dbPath.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteGateway(dbPath string) (*SQLiteGateway, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	g := &SQLiteGateway{db: db}
	if err := g.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return g, nil
}

func (g *SQLiteGateway) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		complete INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := g.db.Exec(schema)
	return err
}

// Create inserts a new record. An empty description is a validation error;
// a duplicate id is a storage error.
func (g *SQLiteGateway) Create(ctx context.Context, item model.Item) error {
	if strings.TrimSpace(item.Description) == "" {
		return ferrors.ValidationError("description cannot be empty").
			WithContext("item_id", item.ID).
			Build()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	_, err := g.db.ExecContext(ctx,
		"INSERT INTO items (id, description, complete) VALUES (?, ?, ?)",
		item.ID, item.Description, boolToInt(item.Complete),
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "insert item").
			WithContext("item_id", item.ID).
			Build()
	}
	return nil
}

// Update replaces the record with the given id.
func (g *SQLiteGateway) Update(ctx context.Context, id string, item model.Item) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.db.ExecContext(ctx,
		"UPDATE items SET description = ?, complete = ? WHERE id = ?",
		item.Description, boolToInt(item.Complete), id,
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "update item").
			WithContext("item_id", id).
			Build()
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "update item rows affected").Build()
	}
	if affected == 0 {
		return ferrors.NotFoundError("item not found").
			WithContext("item_id", id).
			Build()
	}
	return nil
}

// FindAll returns every record in insertion order.
func (g *SQLiteGateway) FindAll(ctx context.Context) ([]model.Item, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows, err := g.db.QueryContext(ctx,
		"SELECT id, description, complete FROM items ORDER BY rowid",
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "query items").Build()
	}
	defer rows.Close()

	return scanItems(rows)
}

// FindOne returns the record with the given id.
func (g *SQLiteGateway) FindOne(ctx context.Context, id string) (model.Item, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var it model.Item
	var complete int
	err := g.db.QueryRowContext(ctx,
		"SELECT id, description, complete FROM items WHERE id = ?", id,
	).Scan(&it.ID, &it.Description, &complete)
	if stderrors.Is(err, sql.ErrNoRows) {
		return model.Item{}, ferrors.NotFoundError("item not found").
			WithContext("item_id", id).
			Build()
	}
	if err != nil {
		return model.Item{}, ferrors.WrapError(err, ferrors.CategoryStorage, "query item").
			WithContext("item_id", id).
			Build()
	}
	it.Complete = complete != 0
	return it, nil
}

// Delete removes the record with the given id.
func (g *SQLiteGateway) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "delete item").
			WithContext("item_id", id).
			Build()
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "delete item rows affected").Build()
	}
	if affected == 0 {
		return ferrors.NotFoundError("item not found").
			WithContext("item_id", id).
			Build()
	}
	return nil
}

// Close closes the database connection.
func (g *SQLiteGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.db.Close()
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var it model.Item
		var complete int
		if err := rows.Scan(&it.ID, &it.Description, &complete); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "scan item").Build()
		}
		it.Complete = complete != 0
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "iterate rows").Build()
	}
	return items, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
