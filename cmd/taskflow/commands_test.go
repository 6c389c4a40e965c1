package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/taskflow/internal/config"
	"git.home.luguber.info/inful/taskflow/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "taskflow.db")
	return cfg
}

func TestFormatItem(t *testing.T) {
	assert.Equal(t, " 1 [ ] buy milk", formatItem(0, model.Item{Description: "buy milk"}))
	assert.Equal(t, " 2 [x] call mom", formatItem(1, model.Item{Description: "call mom", Complete: true}))
	assert.Equal(t, "10 [ ] tenth", formatItem(9, model.Item{Description: "tenth"}))
}

func TestResolveNumber(t *testing.T) {
	items := []model.Item{{ID: "a"}, {ID: "b"}}

	idx, err := resolveNumber(items, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = resolveNumber(items, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = resolveNumber(items, 0)
	require.Error(t, err)
	_, err = resolveNumber(items, 3)
	require.Error(t, err)
}

func TestOneShotCommandsRoundTrip(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, runAdd(cfg, []string{"buy", "milk"}))
	require.NoError(t, runAdd(cfg, []string{"call mom"}))

	// Each command runs against a fresh session hydrated from the same file.
	// Hydration order is record creation order, not the in-memory head
	// insertion order of the session that wrote them.
	s, err := openSession(cfg)
	require.NoError(t, err)
	items := s.store.State().Items
	require.NoError(t, s.Close())

	require.Len(t, items, 2)
	assert.Equal(t, "buy milk", items[0].Description)
	assert.Equal(t, "call mom", items[1].Description)

	require.NoError(t, runToggle(cfg, 1))
	require.NoError(t, runClear(cfg))

	s, err = openSession(cfg)
	require.NoError(t, err)
	items = s.store.State().Items
	require.NoError(t, s.Close())

	require.Len(t, items, 1)
	assert.Equal(t, "call mom", items[0].Description)
}

func TestRunAddRejectsEmptyDescription(t *testing.T) {
	cfg := testConfig(t)
	require.Error(t, runAdd(cfg, []string{"  "}))
}

func TestRunListMissingDatabaseIsEmpty(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, runList(cfg, "all"))
}
