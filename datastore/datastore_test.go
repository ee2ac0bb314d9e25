package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	ds, err := New(path)
	require.NoError(t, err)

	ds.Add("k1", map[string]any{"field": "value"})
	ds.Add("k2", "plain")
	ds.Delete("k2")
	require.NoError(t, ds.Close())

	reloaded, err := New(path)
	require.NoError(t, err)
	defer reloaded.Close()

	v, ok := reloaded.Get("k1")
	require.True(t, ok)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "value", m["field"])

	_, ok = reloaded.Get("k2")
	assert.False(t, ok)
	assert.Equal(t, []string{"k1"}, reloaded.Keys())
}

func TestDataStoreRejectsMissingPath(t *testing.T) {
	_, err := NewWithConfig(&Config{})
	require.Error(t, err)
}

func TestDataStoreClosedIsInert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	ds, err := New(path)
	require.NoError(t, err)
	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close(), "closing twice is fine")

	ds.Add("k", "v")
	_, ok := ds.Get("k")
	assert.False(t, ok)
	require.Error(t, ds.SaveToFile())
}

func TestDataStoreBackupRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	cfg := DefaultConfig(path)
	cfg.AutoSaveInterval = time.Hour
	cfg.BackupCount = 2

	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer ds.Close()

	for i := 0; i < 4; i++ {
		ds.Add("counter", i)
		require.NoError(t, ds.SaveToFile())
	}

	backups, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(backups), cfg.BackupCount)
}
