package source

import (
	"encoding/json"
	"strconv"

	"malstats/pkg/models"
)

func commonRow(e models.Entry) rowCommon {
	return rowCommon{
		ID:         flexInt(e.MyID),
		Status:     flexInt(e.Status.Code()),
		Score:      flexString(strconv.Itoa(e.Score)),
		Tags:       flexString(e.Tags),
		StartDate:  flexString(e.StartDate),
		FinishDate: flexString(e.FinishDate),
		Storage:    flexString(e.Storage),
	}
}

// EncodeAnimePage renders records as one load.json page.
func EncodeAnimePage(records []models.Anime) ([]byte, error) {
	rows := make([]animeRow, 0, len(records))
	for _, a := range records {
		rows = append(rows, animeRow{
			rowCommon:    commonRow(a.Entry),
			AnimeID:      flexInt(a.SeriesAnimeDBID),
			Title:        flexString(a.SeriesTitle),
			MediaType:    flexString(a.SeriesType),
			NumEpisodes:  flexInt(a.SeriesEpisodes),
			NumWatched:   flexInt(a.WatchedEpisodes),
			IsRewatching: flexBool(a.Rewatching),
		})
	}
	return json.Marshal(rows)
}

// EncodeMangaPage renders records as one load.json page.
func EncodeMangaPage(records []models.Manga) ([]byte, error) {
	rows := make([]mangaRow, 0, len(records))
	for _, m := range records {
		rows = append(rows, mangaRow{
			rowCommon:    commonRow(m.Entry),
			MangaID:      flexInt(m.MangaMangaDBID),
			Title:        flexString(m.MangaTitle),
			NumVolumes:   flexInt(m.MangaVolumes),
			NumChapters:  flexInt(m.MangaChapters),
			ReadVolumes:  flexInt(m.ReadVolumes),
			ReadChapters: flexInt(m.ReadChapters),
		})
	}
	return json.Marshal(rows)
}
