package sync

import (
	"time"

	"malstats/pkg/models"
)

const (
	EventSnapshotImported = "snapshot.imported"
	EventSnapshotDeleted  = "snapshot.deleted"
)

type SnapshotEvent struct {
	Type       string    `json:"type"`
	SnapshotID string    `json:"snapshot_id"`
	UserName   string    `json:"user_name"`
	Source     string    `json:"source,omitempty"`
	AnimeCount int       `json:"anime_count,omitempty"`
	MangaCount int       `json:"manga_count,omitempty"`
	At         time.Time `json:"at"`
}

func NewSnapshotEvent(eventType string, s *models.Snapshot) SnapshotEvent {
	return SnapshotEvent{
		Type:       eventType,
		SnapshotID: s.ID,
		UserName:   s.UserName,
		Source:     s.Source,
		AnimeCount: s.AnimeCount,
		MangaCount: s.MangaCount,
		At:         time.Now().UTC(),
	}
}
