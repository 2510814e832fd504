package list

import (
	"fmt"
	"sort"

	"malstats/pkg/models"
)

// Accessor reads one named field from a record.
type Accessor[T models.Record] func(T) any

// Fields is the table of field names a list can group by or disassemble into.
type Fields[T models.Record] map[string]Accessor[T]

// Names returns the supported field names, sorted.
func (f Fields[T]) Names() []string {
	out := make([]string, 0, len(f))
	for name := range f {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (f Fields[T]) lookup(name string) (Accessor[T], error) {
	acc, ok := f[name]
	if !ok {
		return nil, configErr("field", name, ErrUnknownField)
	}
	return acc, nil
}

// categoryKey renders a field value as a grouping key.
func categoryKey(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case models.Status:
		return string(x)
	case models.Date:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func entryFields[T models.Record]() Fields[T] {
	return Fields[T]{
		"my_id":            func(r T) any { return r.Base().MyID },
		"my_start_date":    func(r T) any { return r.Base().StartDate },
		"my_finish_date":   func(r T) any { return r.Base().FinishDate },
		"my_score":         func(r T) any { return r.Base().Score },
		"my_storage":       func(r T) any { return r.Base().Storage },
		"my_status":        func(r T) any { return r.Base().Status },
		"my_comments":      func(r T) any { return r.Base().Comments },
		"my_tags":          func(r T) any { return r.Base().Tags },
		"update_on_import": func(r T) any { return r.Base().UpdateOnImport },
	}
}

// AnimeFields is the field table for anime lists.
var AnimeFields = func() Fields[models.Anime] {
	f := entryFields[models.Anime]()
	f["series_animedb_id"] = func(a models.Anime) any { return a.SeriesAnimeDBID }
	f["series_title"] = func(a models.Anime) any { return a.SeriesTitle }
	f["series_type"] = func(a models.Anime) any { return a.SeriesType }
	f["series_episodes"] = func(a models.Anime) any { return a.SeriesEpisodes }
	f["my_watched_episodes"] = func(a models.Anime) any { return a.WatchedEpisodes }
	f["my_rated"] = func(a models.Anime) any { return a.Rated }
	f["my_dvd"] = func(a models.Anime) any { return a.DVD }
	f["my_times_watched"] = func(a models.Anime) any { return a.TimesWatched }
	f["my_rewatch_value"] = func(a models.Anime) any { return a.RewatchValue }
	f["my_rewatching"] = func(a models.Anime) any { return a.Rewatching }
	f["my_rewatching_ep"] = func(a models.Anime) any { return a.RewatchingEp }
	return f
}()

// MangaFields is the field table for manga lists.
var MangaFields = func() Fields[models.Manga] {
	f := entryFields[models.Manga]()
	f["manga_mangadb_id"] = func(m models.Manga) any { return m.MangaMangaDBID }
	f["manga_title"] = func(m models.Manga) any { return m.MangaTitle }
	f["manga_volumes"] = func(m models.Manga) any { return m.MangaVolumes }
	f["manga_chapters"] = func(m models.Manga) any { return m.MangaChapters }
	f["my_read_volumes"] = func(m models.Manga) any { return m.ReadVolumes }
	f["my_read_chapters"] = func(m models.Manga) any { return m.ReadChapters }
	f["my_scanalation_group"] = func(m models.Manga) any { return m.ScanlationGroup }
	f["my_times_read"] = func(m models.Manga) any { return m.TimesRead }
	f["my_reread_value"] = func(m models.Manga) any { return m.RereadValue }
	return f
}()
