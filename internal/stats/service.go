// Package stats resolves a user's lists and answers statistics queries over
// them. The HTTP, gRPC and CLI surfaces share one Service.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"malstats/internal/list"
	"malstats/internal/profile"
	"malstats/internal/report"
	"malstats/internal/source"
	"malstats/internal/store"
	"malstats/internal/tags"
	"malstats/pkg/logger"
	"malstats/pkg/models"
)

var (
	ErrUserRequired = errors.New("user name required")
	ErrUnknownKind  = errors.New("unknown list kind")
	ErrNoLiveSource = errors.New("no live source configured")
)

// Notifier is told about snapshot changes. sync.Hub implements it.
type Notifier interface {
	SnapshotImported(s *models.Snapshot)
	SnapshotDeleted(s *models.Snapshot)
}

// LiveFunc builds the document source used when a user has no stored
// snapshot or an import is requested.
type LiveFunc func(userName string) source.Source

type Service struct {
	Repo       *store.Repo
	Live       LiveFunc
	Opts       list.Options
	Policy     tags.Policy
	Rules      *tags.Rules
	ManualSort []string
	Notifier   Notifier
	Log        logger.Logger
}

func NewService(repo *store.Repo, live LiveFunc, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{Repo: repo, Live: live, Opts: list.AllStatuses(), Log: log}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrUserRequired
	}
	return name, nil
}

// User loads the latest stored snapshot of name, importing from the live
// source when nothing is stored yet.
func (s *Service) User(ctx context.Context, name string) (*profile.User, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	doc, err := store.NewSource(s.Repo, name).Fetch(ctx)
	if err == nil {
		return profile.New(doc, s.Opts), nil
	}
	if !errors.Is(err, source.ErrNotFound) || s.Live == nil {
		return nil, err
	}

	s.Log.Info("[stats] no snapshot stored, importing", logger.String("user", name))
	_, u, err := s.Import(ctx, name)
	return u, err
}

// Import fetches name from the live source, stores a snapshot and announces
// it to the notifier.
func (s *Service) Import(ctx context.Context, name string) (*models.Snapshot, *profile.User, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, nil, err
	}
	if s.Live == nil {
		return nil, nil, ErrNoLiveSource
	}

	src := s.Live(name)
	doc, err := src.Fetch(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s from %s: %w", name, src.Name(), err)
	}
	if doc.Info.UserName == "" {
		doc.Info.UserName = name
	}

	snap, err := s.Repo.Save(ctx, doc, src.Name())
	if err != nil {
		return nil, nil, err
	}
	s.Log.Info("[stats] snapshot imported",
		logger.String("user", snap.UserName),
		logger.String("snapshot", snap.ID),
		logger.String("source", snap.Source),
		logger.Int("anime", snap.AnimeCount),
		logger.Int("manga", snap.MangaCount),
	)
	if s.Notifier != nil {
		s.Notifier.SnapshotImported(snap)
	}
	return snap, profile.New(doc, s.Opts), nil
}

func (s *Service) Snapshots(ctx context.Context, name string, limit, offset int) ([]models.Snapshot, int, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, 0, err
	}
	return s.Repo.List(ctx, name, limit, offset)
}

// DeleteSnapshot removes a stored snapshot. Deleting an unknown id returns
// store.ErrNotFound.
func (s *Service) DeleteSnapshot(ctx context.Context, id string) error {
	snap, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	if s.Notifier != nil {
		s.Notifier.SnapshotDeleted(snap)
	}
	return nil
}

// Summary builds the per-kind summaries, tag validation included.
func (s *Service) Summary(ctx context.Context, name string) (*report.Summary, error) {
	u, err := s.User(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.Summarize(u)
}

func (s *Service) Summarize(u *profile.User) (*report.Summary, error) {
	animeImproper, err := u.ImproperTagged(models.KindAnime, s.Policy, s.Rules)
	if err != nil {
		return nil, err
	}
	mangaImproper, err := u.ImproperTagged(models.KindManga, s.Policy, s.Rules)
	if err != nil {
		return nil, err
	}

	anime, err := report.Summarize(u.Anime, animeImproper, s.Policy.Enabled)
	if err != nil {
		return nil, fmt.Errorf("summarize anime: %w", err)
	}
	manga, err := report.Summarize(u.Manga, mangaImproper, s.Policy.Enabled)
	if err != nil {
		return nil, fmt.Errorf("summarize manga: %w", err)
	}
	return &report.Summary{Info: u.Info, Anime: anime, Manga: manga}, nil
}

func parseKind(kind string) (models.Kind, error) {
	k, err := models.ParseKind(kind)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return k, nil
}

// Histogram returns the summed scores of one list.
func (s *Service) Histogram(ctx context.Context, name, kind string, includeUnscored bool) ([]int, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	u, err := s.User(ctx, name)
	if err != nil {
		return nil, err
	}
	if k == models.KindAnime {
		return u.Anime.SummedScores(includeUnscored), nil
	}
	return u.Manga.SummedScores(includeUnscored), nil
}

// Groups groups one list and projects each entry onto fields. Anime groups
// fall back to the configured manual order when opts carries none.
func (s *Service) Groups(ctx context.Context, name, kind string, opts list.GroupOptions, fields ...string) ([]list.Group[list.Tuple], error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	u, err := s.User(ctx, name)
	if err != nil {
		return nil, err
	}
	if k == models.KindAnime {
		if opts.ManualSort == nil {
			opts.ManualSort = s.ManualSort
		}
		return u.Anime.GroupedFields(opts, fields...)
	}
	return u.Manga.GroupedFields(opts, fields...)
}

// PartialEntry is one selected entry of a partial view.
type PartialEntry struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Score int    `json:"score"`
}

type PartialResult struct {
	Entries []PartialEntry `json:"entries"`
	Average float64        `json:"average"`
}

// Partial selects the top, bottom or middle share of a list and averages it.
func (s *Service) Partial(ctx context.Context, name, kind string, opts list.PartialOptions) (*PartialResult, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	u, err := s.User(ctx, name)
	if err != nil {
		return nil, err
	}
	if k == models.KindAnime {
		return partial(u.Anime, opts)
	}
	return partial(u.Manga, opts)
}

func partial[T models.Record](l *list.List[T], opts list.PartialOptions) (*PartialResult, error) {
	records, err := l.Partial(opts)
	if err != nil {
		return nil, err
	}
	avg, err := l.PartialAverage(opts)
	if err != nil {
		return nil, err
	}
	res := &PartialResult{Entries: make([]PartialEntry, 0, len(records)), Average: avg}
	for _, r := range records {
		res.Entries = append(res.Entries, PartialEntry{ID: r.ExternalID(), Title: r.Title(), Score: r.Base().Score})
	}
	return res, nil
}

// ImproperTagged lists the titles of one list that break the tagging policy.
func (s *Service) ImproperTagged(ctx context.Context, name, kind string) ([]string, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	u, err := s.User(ctx, name)
	if err != nil {
		return nil, err
	}
	return u.ImproperTagged(k, s.Policy, s.Rules)
}
