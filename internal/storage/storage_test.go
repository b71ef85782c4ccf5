package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/teknify/internal/models"
)

func entry(path string, minute int) models.HistoryEntry {
	return models.HistoryEntry{
		Path:       path,
		URL:        "https://u.teknik.io/" + path,
		UploadedAt: time.Date(2026, 1, 2, 3, minute, 0, 0, time.UTC),
	}
}

func TestLoadMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history.json"))

	entries, err := h.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	h := NewHistory(path)

	require.NoError(t, h.Append(entry("a.png", 1), entry("b.png", 2)))
	require.NoError(t, h.Append(entry("c.png", 3)))
	require.NoError(t, h.Append())

	entries, err := h.Load()
	require.NoError(t, err)
	assert.Equal(t, []models.HistoryEntry{entry("a.png", 1), entry("b.png", 2), entry("c.png", 3)}, entries)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLast(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, h.Append(entry("a.png", 1), entry("b.png", 2), entry("c.png", 3)))

	last, err := h.Last(2)
	require.NoError(t, err)
	assert.Equal(t, []models.HistoryEntry{entry("b.png", 2), entry("c.png", 3)}, last)

	all, err := h.Last(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := NewHistory(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal history data")

	assert.Error(t, NewHistory(path).Append(entry("a.png", 1)))
}
