// Package profile bundles a user's identity with their anime and manga lists.
package profile

import (
	"fmt"

	"malstats/internal/list"
	"malstats/internal/source"
	"malstats/internal/tags"
	"malstats/pkg/models"
)

type User struct {
	Info  models.Info
	Anime *list.List[models.Anime]
	Manga *list.List[models.Manga]
}

// New builds a User from a fetched document. Each list gets its own copy of
// the records.
func New(doc *source.Document, opts list.Options) *User {
	return &User{
		Info:  doc.Info,
		Anime: list.NewAnime(doc.Anime, opts),
		Manga: list.NewManga(doc.Manga, opts),
	}
}

// ImproperTagged lists the titles of one kind that break the tagging policy.
// Every entry is checked, whatever its score or status.
func (u *User) ImproperTagged(kind models.Kind, policy tags.Policy, rules *tags.Rules) ([]string, error) {
	switch kind {
	case models.KindAnime:
		return tags.Validate(u.Anime.Full(true), policy, rules), nil
	case models.KindManga:
		return tags.Validate(u.Manga.Full(true), policy, rules), nil
	default:
		return nil, fmt.Errorf("unknown list kind %q", kind)
	}
}

// Document turns the user back into a document, preserving list order.
func (u *User) Document() *source.Document {
	return &source.Document{
		Info:  u.Info,
		Anime: u.Anime.All(),
		Manga: u.Manga.All(),
	}
}
