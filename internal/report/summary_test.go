package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malstats/internal/list"
	"malstats/pkg/models"
)

func TestSummarize(t *testing.T) {
	l := list.NewAnime([]models.Anime{
		{Entry: models.Entry{Status: models.StatusCompleted, Score: 10}, SeriesAnimeDBID: 1},
		{Entry: models.Entry{Status: models.StatusCompleted, Score: 8}, SeriesAnimeDBID: 2},
		{Entry: models.Entry{Status: models.StatusPlanToWatch}, SeriesAnimeDBID: 3},
	}, list.AllStatuses())

	s, err := Summarize(l, nil, true)
	require.NoError(t, err)

	assert.Equal(t, models.KindAnime, s.Kind)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, StatusCount{Status: "Completed", Count: 2}, s.Statuses[1])
	assert.Equal(t, StatusCount{Status: "Plan to Watch", Count: 1}, s.Statuses[4])
	require.NotNil(t, s.Scoring)
	assert.Equal(t, 2, s.Scoring.Total)
	assert.Equal(t, 9.0, s.Scoring.Average)
	assert.Equal(t, 8, s.Scoring.Mode)
	assert.Equal(t, []string{}, s.ImproperTagged)
}

func TestSummarizeUnscored(t *testing.T) {
	l := list.NewManga([]models.Manga{
		{Entry: models.Entry{Status: models.StatusReading}, MangaMangaDBID: 1},
	}, list.AllStatuses())

	s, err := Summarize(l, []string{"X"}, false)
	require.NoError(t, err)
	assert.Nil(t, s.Scoring)
	assert.Equal(t, "Reading", s.Statuses[0].Status)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Summary{
		Info: models.Info{UserName: "alice", UserID: 42},
		Anime: KindSummary{
			Kind:           models.KindAnime,
			Total:          2,
			Statuses:       []StatusCount{{Status: "Completed", Count: 2}},
			Scoring:        &Scoring{Total: 2, Min: 7, Max: 9, Average: 8, Median: 8, Mode: 7},
			TagsEnabled:    true,
			ImproperTagged: []string{"Akira", "Monster"},
		},
		Manga: KindSummary{Kind: models.KindManga},
	})

	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "7~9")
	assert.Contains(t, out, "8.00")
	assert.Contains(t, out, "Akira, Monster")
	assert.NotContains(t, out, "tag validation is off")
}
