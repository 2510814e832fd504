package source

import (
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"malstats/pkg/logger"
	"malstats/pkg/models"
)

// XMLSource reads the newest animelist*/mangalist* export in Dir. Exports
// may be gzipped.
type XMLSource struct {
	Dir string
	Log logger.Logger
}

func NewXMLSource(dir string, log logger.Logger) *XMLSource {
	if log == nil {
		log = logger.NewNop()
	}
	return &XMLSource{Dir: dir, Log: log}
}

func (s *XMLSource) Name() string { return "xml" }

func (s *XMLSource) Fetch(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	animePath, err := s.latest("animelist")
	if err != nil {
		return nil, err
	}
	if animePath == "" {
		return nil, fmt.Errorf("xml: no animelist export in %s: %w", s.Dir, ErrNotFound)
	}

	var animeExport exportXML
	if err := readExport(animePath, &animeExport); err != nil {
		return nil, err
	}

	doc := &Document{
		Info:  animeExport.Info.toModel(),
		Anime: make([]models.Anime, 0, len(animeExport.Anime)),
	}
	for _, a := range animeExport.Anime {
		rec, err := a.toModel()
		if err != nil {
			return nil, fmt.Errorf("xml: %s: %w", filepath.Base(animePath), err)
		}
		doc.Anime = append(doc.Anime, rec)
	}

	mangaPath, err := s.latest("mangalist")
	if err != nil {
		return nil, err
	}
	if mangaPath == "" {
		s.Log.Warn("[source] no mangalist export, manga list is empty", logger.String("dir", s.Dir))
		doc.Manga = []models.Manga{}
	} else {
		var mangaExport exportXML
		if err := readExport(mangaPath, &mangaExport); err != nil {
			return nil, err
		}
		doc.Manga = make([]models.Manga, 0, len(mangaExport.Manga))
		for _, m := range mangaExport.Manga {
			rec, err := m.toModel()
			if err != nil {
				return nil, fmt.Errorf("xml: %s: %w", filepath.Base(mangaPath), err)
			}
			doc.Manga = append(doc.Manga, rec)
		}
	}

	s.Log.Info("[source] loaded xml export",
		logger.String("anime_file", filepath.Base(animePath)),
		logger.Int("anime", len(doc.Anime)),
		logger.Int("manga", len(doc.Manga)),
	)
	return doc, nil
}

// latest returns the lexicographically last export with the given prefix,
// or "" when there is none.
func (s *XMLSource) latest(prefix string) (string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return "", fmt.Errorf("xml: read dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".xml.gz") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(s.Dir, names[len(names)-1]), nil
}

func readExport(path string, into *exportXML) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("xml: open export: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("xml: gunzip %s: %w", filepath.Base(path), err)
		}
		defer gz.Close()
		r = gz
	}
	return decodeExport(r, into)
}

// decodeExport parses one list export.
func decodeExport(r io.Reader, into *exportXML) error {
	if err := xml.NewDecoder(r).Decode(into); err != nil {
		return fmt.Errorf("xml: decode: %w", err)
	}
	return nil
}

type exportXML struct {
	XMLName xml.Name   `xml:"myanimelist"`
	Info    infoXML    `xml:"myinfo"`
	Anime   []animeXML `xml:"anime"`
	Manga   []mangaXML `xml:"manga"`
}

type infoXML struct {
	UserID     string `xml:"user_id"`
	UserName   string `xml:"user_name"`
	ExportType string `xml:"user_export_type"`
}

func (i infoXML) toModel() models.Info {
	return models.Info{
		UserID:     atoi(i.UserID),
		UserName:   strings.TrimSpace(i.UserName),
		ExportType: strings.TrimSpace(i.ExportType),
	}
}

type entryXML struct {
	MyID           string `xml:"my_id"`
	StartDate      string `xml:"my_start_date"`
	FinishDate     string `xml:"my_finish_date"`
	Score          string `xml:"my_score"`
	Storage        string `xml:"my_storage"`
	Status         string `xml:"my_status"`
	Comments       string `xml:"my_comments"`
	Tags           string `xml:"my_tags"`
	UpdateOnImport string `xml:"update_on_import"`
}

func (e entryXML) toModel(kind models.Kind) (models.Entry, error) {
	status := models.Status(strings.TrimSpace(e.Status))
	if !kind.HasStatus(status) {
		return models.Entry{}, fmt.Errorf("unknown %s status %q", kind, e.Status)
	}
	score, err := models.ParseScore(e.Score)
	if err != nil {
		return models.Entry{}, err
	}
	return models.Entry{
		MyID:           atoi(e.MyID),
		StartDate:      models.Date(strings.TrimSpace(e.StartDate)),
		FinishDate:     models.Date(strings.TrimSpace(e.FinishDate)),
		Score:          score,
		Storage:        strings.TrimSpace(e.Storage),
		Status:         status,
		Comments:       e.Comments,
		Tags:           strings.TrimSpace(e.Tags),
		UpdateOnImport: atob(e.UpdateOnImport),
	}, nil
}

type animeXML struct {
	entryXML
	SeriesAnimeDBID string `xml:"series_animedb_id"`
	SeriesTitle     string `xml:"series_title"`
	SeriesType      string `xml:"series_type"`
	SeriesEpisodes  string `xml:"series_episodes"`
	WatchedEpisodes string `xml:"my_watched_episodes"`
	Rated           string `xml:"my_rated"`
	DVD             string `xml:"my_dvd"`
	TimesWatched    string `xml:"my_times_watched"`
	RewatchValue    string `xml:"my_rewatch_value"`
	Rewatching      string `xml:"my_rewatching"`
	RewatchingEp    string `xml:"my_rewatching_ep"`
}

func (a animeXML) toModel() (models.Anime, error) {
	base, err := a.entryXML.toModel(models.KindAnime)
	if err != nil {
		return models.Anime{}, fmt.Errorf("anime %s: %w", a.SeriesAnimeDBID, err)
	}
	return models.Anime{
		Entry:           base,
		SeriesAnimeDBID: atoi(a.SeriesAnimeDBID),
		SeriesTitle:     strings.TrimSpace(a.SeriesTitle),
		SeriesType:      strings.TrimSpace(a.SeriesType),
		SeriesEpisodes:  atoi(a.SeriesEpisodes),
		WatchedEpisodes: atoi(a.WatchedEpisodes),
		Rated:           strings.TrimSpace(a.Rated),
		DVD:             strings.TrimSpace(a.DVD),
		TimesWatched:    atoi(a.TimesWatched),
		RewatchValue:    strings.TrimSpace(a.RewatchValue),
		Rewatching:      atob(a.Rewatching),
		RewatchingEp:    atoi(a.RewatchingEp),
	}, nil
}

type mangaXML struct {
	entryXML
	MangaMangaDBID  string `xml:"manga_mangadb_id"`
	MangaTitle      string `xml:"manga_title"`
	MangaVolumes    string `xml:"manga_volumes"`
	MangaChapters   string `xml:"manga_chapters"`
	ReadVolumes     string `xml:"my_read_volumes"`
	ReadChapters    string `xml:"my_read_chapters"`
	ScanlationGroup string `xml:"my_scanalation_group"`
	TimesRead       string `xml:"my_times_read"`
	RereadValue     string `xml:"my_reread_value"`
}

func (m mangaXML) toModel() (models.Manga, error) {
	base, err := m.entryXML.toModel(models.KindManga)
	if err != nil {
		return models.Manga{}, fmt.Errorf("manga %s: %w", m.MangaMangaDBID, err)
	}
	return models.Manga{
		Entry:           base,
		MangaMangaDBID:  atoi(m.MangaMangaDBID),
		MangaTitle:      strings.TrimSpace(m.MangaTitle),
		MangaVolumes:    atoi(m.MangaVolumes),
		MangaChapters:   atoi(m.MangaChapters),
		ReadVolumes:     atoi(m.ReadVolumes),
		ReadChapters:    atoi(m.ReadChapters),
		ScanlationGroup: strings.TrimSpace(m.ScanlationGroup),
		TimesRead:       atoi(m.TimesRead),
		RereadValue:     strings.TrimSpace(m.RereadValue),
	}, nil
}

// atoi reads an export number; blanks and junk read as zero.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func atob(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
