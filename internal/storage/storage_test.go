package storage

import (
	"path/filepath"
	"testing"
	"time"

	"server-actions/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGuildID = "guild-1"

var validButton = []byte(`{
	"actions": [
		{"type": "message", "target": {"kind": "self"}, "params": {"mode": "send-channel", "content": "hi"}}
	],
	"conditions": {"cooldown_seconds": 60}
}`)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestButtonRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	cfg, err := s.SetButton(testGuildID, "b1", validButton)
	require.NoError(t, err)
	require.Len(t, cfg.Actions, 1)

	loaded, err := s.ButtonConfig(testGuildID, "b1")
	require.NoError(t, err)
	assert.Equal(t, cfg.Actions[0].Type, loaded.Actions[0].Type)
	assert.Equal(t, 60, loaded.Conditions.CooldownSeconds)
}

func TestSetButtonRejectsInvalidConfig(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.SetButton(testGuildID, "b1", []byte(`{"actions": []}`))
	require.Error(t, err)

	// The broken document was never stored.
	_, err = s.ButtonConfig(testGuildID, "b1")
	var nf *platform.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestDeleteButton(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.SetButton(testGuildID, "b1", validButton)
	require.NoError(t, err)
	require.NoError(t, s.DeleteButton(testGuildID, "b1"))

	_, err = s.ButtonConfig(testGuildID, "b1")
	var nf *platform.NotFoundError
	require.ErrorAs(t, err, &nf)

	err = s.DeleteButton(testGuildID, "b1")
	require.ErrorAs(t, err, &nf)
}

func TestListButtonsSorted(t *testing.T) {
	s := newTestStorage(t)

	for _, id := range []string{"zeta", "alpha", "mid"} {
		_, err := s.SetButton(testGuildID, id, validButton)
		require.NoError(t, err)
	}

	ids, err := s.ListButtons(testGuildID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}

func TestButtonsSurviveReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datastore.json")

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.SetButton(testGuildID, "b1", validButton)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// A fresh instance reads the same file; the record comes back through
	// the raw-map round-trip.
	s2, err := New(path)
	require.NoError(t, err)
	defer s2.Close()

	loaded, err := s2.ButtonConfig(testGuildID, "b1")
	require.NoError(t, err)
	require.Len(t, loaded.Actions, 1)
}

func TestCommandHistory(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < commandHistoryLimit+5; i++ {
		err := s.AppendCommandToHistory(testGuildID, CommandHistoryRecord{
			UserID:   "actor",
			Username: "presser",
			Command:  "ping",
			Datetime: time.Now(),
		})
		require.NoError(t, err)
	}

	history, err := s.FetchCommandHistory(testGuildID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(history), commandHistoryLimit+1)
	assert.Equal(t, "ping", history[0].Command)
}
