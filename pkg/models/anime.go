package models

type Anime struct {
	Entry
	SeriesAnimeDBID int    `json:"series_animedb_id"`
	SeriesTitle     string `json:"series_title"`
	SeriesType      string `json:"series_type"` // TV, Movie, Special, OVA, ONA, Music, ...
	SeriesEpisodes  int    `json:"series_episodes"`
	WatchedEpisodes int    `json:"my_watched_episodes"`
	Rated           string `json:"my_rated,omitempty"`
	DVD             string `json:"my_dvd,omitempty"`
	TimesWatched    int    `json:"my_times_watched"`
	RewatchValue    string `json:"my_rewatch_value,omitempty"`
	Rewatching      bool   `json:"my_rewatching"`
	RewatchingEp    int    `json:"my_rewatching_ep"`
}

func (Anime) Kind() Kind { return KindAnime }

func (a Anime) Title() string { return a.SeriesTitle }

func (a Anime) ExternalID() int { return a.SeriesAnimeDBID }
