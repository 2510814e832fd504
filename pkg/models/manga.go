package models

type Manga struct {
	Entry
	MangaMangaDBID  int    `json:"manga_mangadb_id"`
	MangaTitle      string `json:"manga_title"`
	MangaVolumes    int    `json:"manga_volumes"`
	MangaChapters   int    `json:"manga_chapters"`
	ReadVolumes     int    `json:"my_read_volumes"`
	ReadChapters    int    `json:"my_read_chapters"`
	ScanlationGroup string `json:"my_scanalation_group,omitempty"`
	TimesRead       int    `json:"my_times_read"`
	RereadValue     string `json:"my_reread_value,omitempty"`
}

func (Manga) Kind() Kind { return KindManga }

func (m Manga) Title() string { return m.MangaTitle }

func (m Manga) ExternalID() int { return m.MangaMangaDBID }
