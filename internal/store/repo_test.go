package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malstats/internal/source"
	"malstats/pkg/database"
	"malstats/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.OpenAndMigrate(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepo(db)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return repo
}

func sampleDoc(user string) *source.Document {
	return &source.Document{
		Info: models.Info{UserID: 7, UserName: user, ExportType: "1"},
		Anime: []models.Anime{
			{
				Entry:           models.Entry{MyID: 1, Score: 9, Status: models.StatusCompleted, Tags: "classic", FinishDate: "2020-01-02", UpdateOnImport: true},
				SeriesAnimeDBID: 30, SeriesTitle: "Zeta", SeriesType: "TV", SeriesEpisodes: 50, Rewatching: true,
			},
			{
				Entry:           models.Entry{Score: 0, Status: models.StatusPlanToWatch},
				SeriesAnimeDBID: 10, SeriesTitle: "Alpha", SeriesType: "Movie",
			},
		},
		Manga: []models.Manga{
			{
				Entry:          models.Entry{Score: 8, Status: models.StatusReading, Comments: "ongoing"},
				MangaMangaDBID: 5, MangaTitle: "Berserk", ReadChapters: 300, ScanlationGroup: "none",
			},
		},
	}
}

func TestSaveAndLoadPreservesOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	doc := sampleDoc("alice")

	snap, err := repo.Save(ctx, doc, "xml")
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, 2, snap.AnimeCount)
	assert.Equal(t, 1, snap.MangaCount)

	loaded, err := repo.Load(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	got, err := repo.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "xml", got.Source)
	assert.True(t, got.CreatedAt.Equal(snap.CreatedAt))
}

func TestLatestListDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Save(ctx, sampleDoc("alice"), "api")
	require.NoError(t, err)
	second, err := repo.Save(ctx, sampleDoc("alice"), "api")
	require.NoError(t, err)
	_, err = repo.Save(ctx, sampleDoc("bob"), "api")
	require.NoError(t, err)

	latest, err := repo.Latest(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	snaps, total, err := repo.List(ctx, "alice", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, snaps, 2)
	assert.Equal(t, []string{second.ID, first.ID}, []string{snaps[0].ID, snaps[1].ID})

	ok, err := repo.Delete(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var entries int
	require.NoError(t, repo.DB.QueryRow(`SELECT COUNT(*) FROM anime_entries WHERE snapshot_id = ?`, second.ID).Scan(&entries))
	assert.Zero(t, entries)

	latest, err = repo.Latest(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)

	ok, err = repo.Delete(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Latest(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewSource(repo, "nobody").Fetch(ctx)
	assert.ErrorIs(t, err, source.ErrNotFound)

	_, err = repo.Save(ctx, &source.Document{}, "api")
	assert.Error(t, err)
}

func TestStoreSource(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, err := repo.Save(ctx, sampleDoc("alice"), "api")
	require.NoError(t, err)

	src := NewSource(repo, "alice")
	assert.Equal(t, "store", src.Name())
	doc, err := src.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Zeta", doc.Anime[0].SeriesTitle)
	assert.Equal(t, "Berserk", doc.Manga[0].MangaTitle)
}
