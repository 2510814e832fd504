package models

import "time"

// Snapshot is one stored import of a user's lists.
type Snapshot struct {
	ID         string    `json:"id"`
	UserName   string    `json:"user_name"`
	UserID     int       `json:"user_id"`
	ExportType string    `json:"export_type,omitempty"`
	Source     string    `json:"source"`
	AnimeCount int       `json:"anime_count"`
	MangaCount int       `json:"manga_count"`
	CreatedAt  time.Time `json:"created_at"`
}
