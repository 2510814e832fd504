// Package store persists imported list documents as snapshots in sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"malstats/internal/source"
	"malstats/pkg/models"
)

var ErrNotFound = errors.New("snapshot not found")

type Repo struct {
	DB  *sql.DB
	now func() time.Time
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

const snapshotColumns = `id, user_name, user_id, export_type, source, anime_count, manga_count, created_at`

// Save stores a document and all of its entries in one transaction.
func (r *Repo) Save(ctx context.Context, doc *source.Document, sourceName string) (*models.Snapshot, error) {
	if doc.Info.UserName == "" {
		return nil, fmt.Errorf("save snapshot: user name is required")
	}
	snap := &models.Snapshot{
		ID:         uuid.NewString(),
		UserName:   doc.Info.UserName,
		UserID:     doc.Info.UserID,
		ExportType: doc.Info.ExportType,
		Source:     sourceName,
		AnimeCount: len(doc.Anime),
		MangaCount: len(doc.Manga),
		CreatedAt:  r.now(),
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.UserName, snap.UserID, snap.ExportType, snap.Source, snap.AnimeCount, snap.MangaCount, snap.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := insertAnime(ctx, tx, snap.ID, doc.Anime); err != nil {
		return nil, err
	}
	if err := insertManga(ctx, tx, snap.ID, doc.Manga); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return snap, nil
}

func insertAnime(ctx context.Context, tx *sql.Tx, snapshotID string, records []models.Anime) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anime_entries (
			snapshot_id, position, series_animedb_id, series_title, series_type, series_episodes,
			my_id, watched_episodes, start_date, finish_date, rated, score, dvd, storage, status,
			comments, times_watched, rewatch_value, tags, rewatching, rewatching_ep, update_on_import
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare anime insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range records {
		if _, err := stmt.ExecContext(ctx,
			snapshotID, i, a.SeriesAnimeDBID, a.SeriesTitle, a.SeriesType, a.SeriesEpisodes,
			a.MyID, a.WatchedEpisodes, string(a.StartDate), string(a.FinishDate), a.Rated, a.Score, a.DVD, a.Storage, string(a.Status),
			a.Comments, a.TimesWatched, a.RewatchValue, a.Tags, a.Rewatching, a.RewatchingEp, a.UpdateOnImport,
		); err != nil {
			return fmt.Errorf("insert anime %d: %w", a.SeriesAnimeDBID, err)
		}
	}
	return nil
}

func insertManga(ctx context.Context, tx *sql.Tx, snapshotID string, records []models.Manga) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO manga_entries (
			snapshot_id, position, manga_mangadb_id, manga_title, manga_volumes, manga_chapters,
			my_id, read_volumes, read_chapters, start_date, finish_date, scanlation_group, score,
			storage, status, comments, times_read, reread_value, tags, update_on_import
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare manga insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range records {
		if _, err := stmt.ExecContext(ctx,
			snapshotID, i, m.MangaMangaDBID, m.MangaTitle, m.MangaVolumes, m.MangaChapters,
			m.MyID, m.ReadVolumes, m.ReadChapters, string(m.StartDate), string(m.FinishDate), m.ScanlationGroup, m.Score,
			m.Storage, string(m.Status), m.Comments, m.TimesRead, m.RereadValue, m.Tags, m.UpdateOnImport,
		); err != nil {
			return fmt.Errorf("insert manga %d: %w", m.MangaMangaDBID, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.Snapshot, error) {
	var s models.Snapshot
	if err := row.Scan(&s.ID, &s.UserName, &s.UserID, &s.ExportType, &s.Source, &s.AnimeCount, &s.MangaCount, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return s, nil
}

// Latest returns the most recent snapshot of a user.
func (r *Repo) Latest(ctx context.Context, userName string) (*models.Snapshot, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE user_name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, userName)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return s, nil
}

// List returns a user's snapshots, newest first, and the total count.
func (r *Repo) List(ctx context.Context, userName string, limit, offset int) ([]models.Snapshot, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE user_name = ?`, userName).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count snapshots: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE user_name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, userName, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]models.Snapshot, 0, limit)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan snapshot row: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

// Delete removes a snapshot and, by cascade, its entries.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete snapshot: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Load rebuilds the document of a snapshot with entries in their stored
// order.
func (r *Repo) Load(ctx context.Context, id string) (*source.Document, error) {
	snap, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := &source.Document{
		Info: models.Info{UserID: snap.UserID, UserName: snap.UserName, ExportType: snap.ExportType},
	}
	if doc.Anime, err = r.loadAnime(ctx, id, snap.AnimeCount); err != nil {
		return nil, err
	}
	if doc.Manga, err = r.loadManga(ctx, id, snap.MangaCount); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *Repo) loadAnime(ctx context.Context, id string, hint int) ([]models.Anime, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT series_animedb_id, series_title, series_type, series_episodes, my_id, watched_episodes,
			start_date, finish_date, rated, score, dvd, storage, status, comments, times_watched,
			rewatch_value, tags, rewatching, rewatching_ep, update_on_import
		FROM anime_entries
		WHERE snapshot_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load anime: %w", err)
	}
	defer rows.Close()

	out := make([]models.Anime, 0, hint)
	for rows.Next() {
		var a models.Anime
		if err := rows.Scan(
			&a.SeriesAnimeDBID, &a.SeriesTitle, &a.SeriesType, &a.SeriesEpisodes, &a.MyID, &a.WatchedEpisodes,
			&a.StartDate, &a.FinishDate, &a.Rated, &a.Score, &a.DVD, &a.Storage, &a.Status, &a.Comments, &a.TimesWatched,
			&a.RewatchValue, &a.Tags, &a.Rewatching, &a.RewatchingEp, &a.UpdateOnImport,
		); err != nil {
			return nil, fmt.Errorf("scan anime row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) loadManga(ctx context.Context, id string, hint int) ([]models.Manga, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT manga_mangadb_id, manga_title, manga_volumes, manga_chapters, my_id, read_volumes,
			read_chapters, start_date, finish_date, scanlation_group, score, storage, status, comments,
			times_read, reread_value, tags, update_on_import
		FROM manga_entries
		WHERE snapshot_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load manga: %w", err)
	}
	defer rows.Close()

	out := make([]models.Manga, 0, hint)
	for rows.Next() {
		var m models.Manga
		if err := rows.Scan(
			&m.MangaMangaDBID, &m.MangaTitle, &m.MangaVolumes, &m.MangaChapters, &m.MyID, &m.ReadVolumes,
			&m.ReadChapters, &m.StartDate, &m.FinishDate, &m.ScanlationGroup, &m.Score, &m.Storage, &m.Status, &m.Comments,
			&m.TimesRead, &m.RereadValue, &m.Tags, &m.UpdateOnImport,
		); err != nil {
			return nil, fmt.Errorf("scan manga row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
