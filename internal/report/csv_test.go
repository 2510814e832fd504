package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malstats/internal/list"
	"malstats/internal/profile"
	"malstats/internal/source"
	"malstats/pkg/models"
)

func TestWriteUserCSV(t *testing.T) {
	u := profile.New(&source.Document{
		Manga: []models.Manga{
			{Entry: models.Entry{Status: models.StatusReading, Score: 9, Tags: "dark, classic"}, MangaMangaDBID: 2, MangaTitle: "Berserk"},
			{Entry: models.Entry{Status: models.StatusPlanToRead}, MangaMangaDBID: 1, MangaTitle: "Monster"},
		},
	}, list.AllStatuses())

	var buf bytes.Buffer
	require.NoError(t, WriteUserCSV(&buf, u, models.KindManga))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, u.Manga.Fields().Names(), header)

	col := map[string]int{}
	for i, h := range header {
		col[h] = i
	}
	assert.Equal(t, "Berserk", rows[1][col["manga_title"]])
	assert.Equal(t, "dark, classic", rows[1][col["my_tags"]])
	assert.Equal(t, "Plan to Read", rows[2][col["my_status"]])

	assert.Error(t, WriteUserCSV(&buf, u, "novel"))
}
