package models

import "time"

// HistoryEntry is one successful upload kept in the history file
type HistoryEntry struct {
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}
