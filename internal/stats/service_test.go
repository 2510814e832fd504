package stats

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malstats/internal/list"
	"malstats/internal/source"
	"malstats/internal/store"
	"malstats/internal/tags"
	"malstats/pkg/database"
	"malstats/pkg/models"
)

type fakeSource struct {
	doc   *source.Document
	err   error
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) (*source.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type recorder struct {
	imported []string
	deleted  []string
}

func (r *recorder) SnapshotImported(s *models.Snapshot) { r.imported = append(r.imported, s.ID) }
func (r *recorder) SnapshotDeleted(s *models.Snapshot)  { r.deleted = append(r.deleted, s.ID) }

func testDoc() *source.Document {
	return &source.Document{
		Info: models.Info{UserName: "alice", UserID: 1},
		Anime: []models.Anime{
			{Entry: models.Entry{Status: models.StatusCompleted, Score: 9, Tags: "great"}, SeriesAnimeDBID: 1, SeriesTitle: "Bebop", SeriesType: "TV"},
			{Entry: models.Entry{Status: models.StatusCompleted, Score: 7}, SeriesAnimeDBID: 2, SeriesTitle: "Akira", SeriesType: "Movie"},
			{Entry: models.Entry{Status: models.StatusCompleted, Score: 5, Tags: "meh"}, SeriesAnimeDBID: 3, SeriesTitle: "Trigun", SeriesType: "TV"},
			{Entry: models.Entry{Status: models.StatusPlanToWatch}, SeriesAnimeDBID: 4, SeriesTitle: "Monster", SeriesType: "TV"},
		},
		Manga: []models.Manga{
			{Entry: models.Entry{Status: models.StatusReading, Score: 8}, MangaMangaDBID: 9, MangaTitle: "Berserk"},
		},
	}
}

func newTestService(t *testing.T, live *fakeSource) (*Service, *recorder) {
	t.Helper()
	db, err := database.OpenAndMigrate(database.Config{Path: filepath.Join(t.TempDir(), "stats.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rec := &recorder{}
	svc := NewService(store.NewRepo(db), func(string) source.Source { return live }, nil)
	svc.Notifier = rec
	return svc, rec
}

func TestUserImportsOnce(t *testing.T) {
	live := &fakeSource{doc: testDoc()}
	svc, rec := newTestService(t, live)
	ctx := context.Background()

	u, err := svc.User(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, u.Anime.Len())
	require.Len(t, rec.imported, 1)

	_, err = svc.User(ctx, " alice ")
	require.NoError(t, err)
	assert.Equal(t, 1, live.calls)

	snaps, total, err := svc.Snapshots(ctx, "alice", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "fake", snaps[0].Source)
}

func TestUserErrors(t *testing.T) {
	live := &fakeSource{err: source.ErrNotFound}
	svc, rec := newTestService(t, live)
	ctx := context.Background()

	_, err := svc.User(ctx, "  ")
	assert.ErrorIs(t, err, ErrUserRequired)

	_, err = svc.User(ctx, "ghost")
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.Empty(t, rec.imported)

	svc.Live = nil
	_, _, err = svc.Import(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoLiveSource)
	_, err = svc.User(ctx, "ghost")
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestSummary(t *testing.T) {
	svc, _ := newTestService(t, &fakeSource{doc: testDoc()})
	policy, err := tags.ParsePolicy(true, []string{"Completed"}, []string{"Planned"}, nil)
	require.NoError(t, err)
	svc.Policy = policy

	sum, err := svc.Summary(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", sum.Info.UserName)
	assert.Equal(t, 4, sum.Anime.Total)
	require.NotNil(t, sum.Anime.Scoring)
	assert.Equal(t, 7.0, sum.Anime.Scoring.Average)
	assert.Equal(t, []string{"Akira"}, sum.Anime.ImproperTagged)
	assert.Equal(t, 8, sum.Manga.Scoring.Max)
}

func TestQueries(t *testing.T) {
	svc, _ := newTestService(t, &fakeSource{doc: testDoc()})
	svc.ManualSort = []string{"Movie"}
	ctx := context.Background()

	hist, err := svc.Histogram(ctx, "alice", "anime", false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 0, 1, 0, 1, 0}, hist)

	groups, err := svc.Groups(ctx, "alice", "anime", list.GroupOptions{GroupBy: "series_type"}, "series_title")
	require.NoError(t, err)
	assert.Equal(t, []string{"Movie", "TV"}, list.Keys(groups))

	res, err := svc.Partial(ctx, "alice", "anime", list.PartialOptions{Percentage: 50, Part: list.PartTop, Rounding: list.RoundFloor})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, PartialEntry{ID: 1, Title: "Bebop", Score: 9}, res.Entries[0])
	assert.Equal(t, 9.0, res.Average)

	_, err = svc.Histogram(ctx, "alice", "novels", false)
	assert.ErrorIs(t, err, ErrUnknownKind)

	improper, err := svc.ImproperTagged(ctx, "alice", "manga")
	require.NoError(t, err)
	assert.Empty(t, improper)
}

func TestDeleteSnapshot(t *testing.T) {
	svc, rec := newTestService(t, &fakeSource{doc: testDoc()})
	ctx := context.Background()

	snap, _, err := svc.Import(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSnapshot(ctx, snap.ID))
	assert.Equal(t, []string{snap.ID}, rec.deleted)

	err = svc.DeleteSnapshot(ctx, snap.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
