// Package source loads a user's anime and manga lists from an exported
// file or the remote list endpoint.
package source

import (
	"context"
	"errors"

	"malstats/pkg/models"
)

var ErrNotFound = errors.New("list not found")

// Document is everything a source knows about one user.
type Document struct {
	Info  models.Info    `json:"info"`
	Anime []models.Anime `json:"anime"`
	Manga []models.Manga `json:"manga"`
}

// Source produces a Document.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*Document, error)
}
