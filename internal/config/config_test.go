package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/taskflow/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  path: /tmp/items.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/items.db", cfg.Database.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce.Resort.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce.Edit.Std())
	assert.Equal(t, time.Minute, cfg.Reconcile.Interval.Std())
	assert.False(t, cfg.Feed.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadParsesDurations(t *testing.T) {
	path := writeConfig(t, `
debounce:
  resort: 250ms
  edit: 2s
reconcile:
  enabled: true
  interval: 5m
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce.Resort.Std())
	assert.Equal(t, 2*time.Second, cfg.Debounce.Edit.Std())
	assert.Equal(t, 5*time.Minute, cfg.Reconcile.Interval.Std())
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TASKFLOW_DB", "/data/env.db")
	path := writeConfig(t, "database:\n  path: ${TASKFLOW_DB}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/env.db", cfg.Database.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryConfig, ce.Category())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "debounce:\n  resort: soon\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(c *Config) {}, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, false},
		{"reconcile interval too short", func(c *Config) {
			c.Reconcile.Enabled = true
			c.Reconcile.Interval = Duration(100 * time.Millisecond)
		}, false},
		{"feed without url", func(c *Config) {
			c.Feed.Enabled = true
			c.Feed.NATSURL = ""
		}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, Init(path, false))

	// The generated example must load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Reconcile.Enabled)

	// Refuses to clobber without force.
	err = Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))
}
