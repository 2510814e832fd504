// Package list computes filtered, grouped and scored views over one user's
// anime or manga list.
package list

import (
	"strings"
	"unicode"

	"malstats/pkg/models"
)

// CountAll is the Count key that counts every entry regardless of status.
const CountAll = "all"

// Options controls which non-completed statuses are visible. Completed
// entries are always visible.
type Options struct {
	IncludeCurrent bool `json:"include_current" mapstructure:"include_current"`
	IncludeOnHold  bool `json:"include_onhold" mapstructure:"include_onhold"`
	IncludeDropped bool `json:"include_dropped" mapstructure:"include_dropped"`
	IncludePlanned bool `json:"include_planned" mapstructure:"include_planned"`
}

// AllStatuses makes every status visible.
func AllStatuses() Options {
	return Options{IncludeCurrent: true, IncludeOnHold: true, IncludeDropped: true, IncludePlanned: true}
}

// List is an ordered collection of records of one kind.
type List[T models.Record] struct {
	kind   models.Kind
	data   []T
	fields Fields[T]
	opts   Options
}

// New copies records into a freshly allocated backing slice so no two lists
// share storage.
func New[T models.Record](records []T, fields Fields[T], opts Options) *List[T] {
	var zero T
	data := make([]T, len(records))
	copy(data, records)
	return &List[T]{
		kind:   zero.Kind(),
		data:   data,
		fields: fields,
		opts:   opts,
	}
}

func NewAnime(records []models.Anime, opts Options) *List[models.Anime] {
	return New(records, AnimeFields, opts)
}

func NewManga(records []models.Manga, opts Options) *List[models.Manga] {
	return New(records, MangaFields, opts)
}

func (l *List[T]) Kind() models.Kind { return l.kind }

func (l *List[T]) Options() Options { return l.opts }

func (l *List[T]) Fields() Fields[T] { return l.fields }

func (l *List[T]) Len() int { return len(l.data) }

// Add appends a record.
func (l *List[T]) Add(r T) {
	l.data = append(l.data, r)
}

// Get returns the first record with the given external id.
func (l *List[T]) Get(externalID int) (T, bool) {
	for _, r := range l.data {
		if r.ExternalID() == externalID {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Delete removes and returns the first record with the given external id.
func (l *List[T]) Delete(externalID int) (T, bool) {
	for i, r := range l.data {
		if r.ExternalID() == externalID {
			l.data = append(l.data[:i:i], l.data[i+1:]...)
			return r, true
		}
	}
	var zero T
	return zero, false
}

// All returns a copy of every record in insertion order.
func (l *List[T]) All() []T {
	out := make([]T, len(l.data))
	copy(out, l.data)
	return out
}

// Count returns the number of entries with the given status. The key is
// matched case-insensitively ("plan to watch", "ON-HOLD"); CountAll counts
// everything and an unrecognised key counts zero.
func (l *List[T]) Count(key string) int {
	if key == CountAll {
		return len(l.data)
	}
	status := models.Status(normalizeStatusKey(key))
	if !l.kind.HasStatus(status) {
		return 0
	}
	n := 0
	for _, r := range l.data {
		if r.Base().Status == status {
			n++
		}
	}
	return n
}

// normalizeStatusKey title-cases each run of letters and then lower-cases
// every "To", so "plan to watch" becomes "Plan to Watch".
func normalizeStatusKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	inWord := false
	for _, r := range key {
		if unicode.IsLetter(r) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			inWord = true
			continue
		}
		inWord = false
		b.WriteRune(r)
	}
	return strings.ReplaceAll(b.String(), "To", "to")
}

func (l *List[T]) visible(status models.Status) bool {
	switch status.Phase() {
	case models.PhaseCurrent:
		return l.opts.IncludeCurrent
	case models.PhaseOnHold:
		return l.opts.IncludeOnHold
	case models.PhaseDropped:
		return l.opts.IncludeDropped
	case models.PhasePlanned:
		return l.opts.IncludePlanned
	default:
		return true
	}
}

// Visible returns the entries passing the status flags and, unless
// includeUnscored is set, having a non-zero score. Order is preserved.
func (l *List[T]) Visible(includeUnscored bool) []T {
	out := make([]T, 0, len(l.data))
	for _, r := range l.data {
		base := r.Base()
		if !l.visible(base.Status) {
			continue
		}
		if base.Score == 0 && !includeUnscored {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Full is Visible without the status flags.
func (l *List[T]) Full(includeUnscored bool) []T {
	out := make([]T, 0, len(l.data))
	for _, r := range l.data {
		if r.Base().Score == 0 && !includeUnscored {
			continue
		}
		out = append(out, r)
	}
	return out
}
