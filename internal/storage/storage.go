package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/kelsos/teknify/internal/models"
)

// History persists successful uploads as a JSON array
type History struct {
	path string
}

// GetHistoryFilePath returns the default history file location under XDG_DATA_HOME
func GetHistoryFilePath() (string, error) {
	path, err := xdg.DataFile(filepath.Join("teknify", "history.json"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve history file path: %w", err)
	}
	return path, nil
}

// NewHistory creates a history stored at path
func NewHistory(path string) *History {
	return &History{path: path}
}

// Path returns the file backing the history
func (h *History) Path() string {
	return h.path
}

// Load reads all entries, oldest first. A missing file is an empty history.
func (h *History) Load() ([]models.HistoryEntry, error) {
	fileData, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if len(fileData) == 0 {
		return nil, nil
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(fileData, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history data: %w", err)
	}

	return entries, nil
}

// Append adds entries to the end of the history
func (h *History) Append(entries ...models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	existing, err := h.Load()
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(append(existing, entries...), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history data: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmpPath := h.path + ".tmp"
	if err := os.WriteFile(tmpPath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmpPath, h.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace history file: %w", err)
	}

	return nil
}

// Last returns up to n most recent entries, oldest first. n <= 0 returns all.
func (h *History) Last(n int) ([]models.HistoryEntry, error) {
	entries, err := h.Load()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
