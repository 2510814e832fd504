package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"malstats/pkg/logger"
	"malstats/pkg/models"
)

const DefaultBaseURL = "https://myanimelist.net"

// APISource pages through the public load.json list endpoint of one user.
type APISource struct {
	BaseURL  string
	Username string
	Client   *http.Client
	// MaxPages bounds the paging loop per list; zero means unbounded.
	MaxPages int
	Log      logger.Logger
}

func NewAPISource(baseURL, username string, log logger.Logger) *APISource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &APISource{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Client:   &http.Client{Timeout: 15 * time.Second},
		Log:      log,
	}
}

func (s *APISource) Name() string { return "api" }

func (s *APISource) Fetch(ctx context.Context) (*Document, error) {
	if s.Username == "" {
		return nil, fmt.Errorf("api: username is required")
	}

	var animeRows []animeRow
	if err := s.fetchAll(ctx, "animelist", func(body []byte) (int, error) {
		var page []animeRow
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		animeRows = append(animeRows, page...)
		return len(page), nil
	}); err != nil {
		return nil, err
	}

	var mangaRows []mangaRow
	if err := s.fetchAll(ctx, "mangalist", func(body []byte) (int, error) {
		var page []mangaRow
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		mangaRows = append(mangaRows, page...)
		return len(page), nil
	}); err != nil {
		return nil, err
	}

	doc := &Document{
		Info:  models.Info{UserName: s.Username},
		Anime: make([]models.Anime, 0, len(animeRows)),
		Manga: make([]models.Manga, 0, len(mangaRows)),
	}
	for _, row := range animeRows {
		a, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("api: %w", err)
		}
		doc.Anime = append(doc.Anime, a)
	}
	for _, row := range mangaRows {
		m, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("api: %w", err)
		}
		doc.Manga = append(doc.Manga, m)
	}

	s.Log.Info("[source] fetched lists",
		logger.String("user", s.Username),
		logger.Int("anime", len(doc.Anime)),
		logger.Int("manga", len(doc.Manga)),
	)
	return doc, nil
}

// fetchAll requests pages until one comes back empty, advancing the offset
// by the length of each page.
func (s *APISource) fetchAll(ctx context.Context, list string, decode func([]byte) (int, error)) error {
	offset := 0
	for page := 0; s.MaxPages == 0 || page < s.MaxPages; page++ {
		u, err := url.Parse(fmt.Sprintf("%s/%s/%s/load.json", s.BaseURL, list, url.PathEscape(s.Username)))
		if err != nil {
			return fmt.Errorf("api: build url: %w", err)
		}
		q := u.Query()
		q.Set("status", "7")
		q.Set("offset", strconv.Itoa(offset))
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return fmt.Errorf("api: build request: %w", err)
		}
		resp, err := s.Client.Do(req)
		if err != nil {
			return fmt.Errorf("api: request: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("api: read body: %w", err)
		}

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("api: %s of %s: %w", list, s.Username, ErrNotFound)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("api: status %d: %s", resp.StatusCode, truncate(body, 200))
		}

		n, err := decode(body)
		if err != nil {
			return fmt.Errorf("api: decode %s page at offset %d: %w", list, offset, err)
		}
		s.Log.Debug("[source] page", logger.String("list", list), logger.Int("offset", offset), logger.Int("rows", n))
		if n == 0 {
			return nil
		}
		offset += n
	}
	return nil
}

func truncate(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// flexString accepts a JSON string, number or null. Titles that are purely
// numeric come back as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(b)
	}
	return nil
}

// flexInt accepts a JSON number, a numeric string or null.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	str := strings.TrimSpace(string(s))
	if str == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", str)
	}
	*f = flexInt(n)
	return nil
}

// flexBool accepts true/false, 0/1 or null.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*f = flexBool(atob(string(s)))
	return nil
}

type rowCommon struct {
	ID         flexInt    `json:"id"`
	Status     flexInt    `json:"status"`
	Score      flexString `json:"score"`
	Tags       flexString `json:"tags"`
	StartDate  flexString `json:"start_date_string"`
	FinishDate flexString `json:"finish_date_string"`
	Storage    flexString `json:"storage_string"`
}

func (r rowCommon) toEntry(kind models.Kind) (models.Entry, error) {
	status, err := models.StatusFromCode(kind, int(r.Status))
	if err != nil {
		return models.Entry{}, err
	}
	score, err := models.ParseScore(string(r.Score))
	if err != nil {
		return models.Entry{}, err
	}
	return models.Entry{
		MyID:       int(r.ID),
		StartDate:  models.Date(r.StartDate),
		FinishDate: models.Date(r.FinishDate),
		Score:      score,
		Storage:    string(r.Storage),
		Status:     status,
		Tags:       strings.TrimSpace(string(r.Tags)),
	}, nil
}

type animeRow struct {
	rowCommon
	AnimeID      flexInt    `json:"anime_id"`
	Title        flexString `json:"anime_title"`
	MediaType    flexString `json:"anime_media_type_string"`
	NumEpisodes  flexInt    `json:"anime_num_episodes"`
	NumWatched   flexInt    `json:"num_watched_episodes"`
	IsRewatching flexBool   `json:"is_rewatching"`
}

func (r animeRow) toModel() (models.Anime, error) {
	base, err := r.toEntry(models.KindAnime)
	if err != nil {
		return models.Anime{}, fmt.Errorf("anime %d: %w", r.AnimeID, err)
	}
	return models.Anime{
		Entry:           base,
		SeriesAnimeDBID: int(r.AnimeID),
		SeriesTitle:     string(r.Title),
		SeriesType:      string(r.MediaType),
		SeriesEpisodes:  int(r.NumEpisodes),
		WatchedEpisodes: int(r.NumWatched),
		Rewatching:      bool(r.IsRewatching),
	}, nil
}

type mangaRow struct {
	rowCommon
	MangaID      flexInt    `json:"manga_id"`
	Title        flexString `json:"manga_title"`
	NumVolumes   flexInt    `json:"manga_num_volumes"`
	NumChapters  flexInt    `json:"manga_num_chapters"`
	ReadVolumes  flexInt    `json:"num_read_volumes"`
	ReadChapters flexInt    `json:"num_read_chapters"`
}

func (r mangaRow) toModel() (models.Manga, error) {
	base, err := r.toEntry(models.KindManga)
	if err != nil {
		return models.Manga{}, fmt.Errorf("manga %d: %w", r.MangaID, err)
	}
	return models.Manga{
		Entry:          base,
		MangaMangaDBID: int(r.MangaID),
		MangaTitle:     string(r.Title),
		MangaVolumes:   int(r.NumVolumes),
		MangaChapters:  int(r.NumChapters),
		ReadVolumes:    int(r.ReadVolumes),
		ReadChapters:   int(r.ReadChapters),
	}, nil
}
