package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"malstats/internal/list"
	"malstats/internal/profile"
	"malstats/pkg/models"
)

// WriteCSV writes every entry of l, one column per field, in list order.
func WriteCSV[T models.Record](w io.Writer, l *list.List[T]) error {
	fields := l.Fields()
	names := fields.Names()

	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(names))
	for _, r := range l.All() {
		for i, name := range names {
			row[i] = fmt.Sprint(fields[name](r))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteUserCSV writes the list of one kind.
func WriteUserCSV(w io.Writer, u *profile.User, kind models.Kind) error {
	switch kind {
	case models.KindAnime:
		return WriteCSV(w, u.Anime)
	case models.KindManga:
		return WriteCSV(w, u.Manga)
	default:
		return fmt.Errorf("unknown list kind %q", kind)
	}
}
