package store

import (
	"context"
	"errors"
	"fmt"

	"malstats/internal/source"
)

// Source serves the latest stored snapshot of one user as a document.
type Source struct {
	Repo     *Repo
	UserName string
}

func NewSource(repo *Repo, userName string) *Source {
	return &Source{Repo: repo, UserName: userName}
}

func (s *Source) Name() string { return "store" }

func (s *Source) Fetch(ctx context.Context) (*source.Document, error) {
	snap, err := s.Repo.Latest(ctx, s.UserName)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("store: no snapshot for %s: %w", s.UserName, source.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.Repo.Load(ctx, snap.ID)
}
