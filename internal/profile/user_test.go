package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malstats/internal/list"
	"malstats/internal/source"
	"malstats/internal/tags"
	"malstats/pkg/models"
)

func testDocument() *source.Document {
	return &source.Document{
		Info: models.Info{UserID: 1, UserName: "alice"},
		Anime: []models.Anime{
			{Entry: models.Entry{Status: models.StatusWatching, Score: 0}, SeriesAnimeDBID: 1, SeriesTitle: "Monster"},
			{Entry: models.Entry{Status: models.StatusCompleted, Score: 9, Tags: "classic"}, SeriesAnimeDBID: 2, SeriesTitle: "Akira"},
		},
		Manga: []models.Manga{
			{Entry: models.Entry{Status: models.StatusDropped, Score: 4, Tags: "meh"}, MangaMangaDBID: 3, MangaTitle: "Gantz"},
		},
	}
}

func TestNewAllocatesFreshLists(t *testing.T) {
	doc := testDocument()
	u := New(doc, list.Options{})

	doc.Anime[0].SeriesTitle = "changed"
	got, ok := u.Anime.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Monster", got.SeriesTitle)
	assert.Equal(t, "alice", u.Info.UserName)
	assert.Equal(t, 2, u.Anime.Count(list.CountAll))
	assert.Equal(t, 1, u.Manga.Count("dropped"))
}

func TestImproperTaggedIgnoresVisibility(t *testing.T) {
	u := New(testDocument(), list.Options{})
	policy, err := tags.ParsePolicy(true, []string{"Watching", "Completed"}, []string{"Dropped", "Planned"}, nil)
	require.NoError(t, err)

	anime, err := u.ImproperTagged(models.KindAnime, policy, tags.NewRules())
	require.NoError(t, err)
	assert.Equal(t, []string{"Monster"}, anime)

	manga, err := u.ImproperTagged(models.KindManga, policy, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gantz"}, manga)

	_, err = u.ImproperTagged("novel", policy, nil)
	assert.Error(t, err)
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := testDocument()
	u := New(doc, list.AllStatuses())
	assert.Equal(t, doc, u.Document())
}
