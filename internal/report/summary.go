// Package report summarises a user's lists and prints the summary as tables.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"malstats/internal/list"
	"malstats/pkg/models"
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type Scoring struct {
	Total             int     `json:"total"`
	Min               int     `json:"min"`
	Max               int     `json:"max"`
	Average           float64 `json:"average"`
	Median            float64 `json:"median"`
	Mode              int     `json:"mode"`
	StandardDeviation float64 `json:"standard_deviation"`
}

// KindSummary describes one list. Scoring is nil when nothing is scored.
type KindSummary struct {
	Kind           models.Kind   `json:"kind"`
	Total          int           `json:"total"`
	Statuses       []StatusCount `json:"statuses"`
	Scoring        *Scoring      `json:"scoring,omitempty"`
	TagsEnabled    bool          `json:"tags_enabled"`
	ImproperTagged []string      `json:"improper_tagged"`
}

type Summary struct {
	Info  models.Info `json:"info"`
	Anime KindSummary `json:"anime"`
	Manga KindSummary `json:"manga"`
}

// Summarize counts statuses and, when the list has scored entries, computes
// the score statistics.
func Summarize[T models.Record](l *list.List[T], improper []string, tagsEnabled bool) (KindSummary, error) {
	s := KindSummary{
		Kind:           l.Kind(),
		Total:          l.Count(list.CountAll),
		TagsEnabled:    tagsEnabled,
		ImproperTagged: improper,
	}
	if s.ImproperTagged == nil {
		s.ImproperTagged = []string{}
	}
	for _, st := range l.Kind().Statuses() {
		s.Statuses = append(s.Statuses, StatusCount{Status: string(st), Count: l.Count(string(st))})
	}

	scoring, err := score(l)
	if errors.Is(err, list.ErrNoScores) {
		return s, nil
	}
	if err != nil {
		return KindSummary{}, err
	}
	s.Scoring = scoring
	return s, nil
}

func score[T models.Record](l *list.List[T]) (*Scoring, error) {
	var (
		sc  Scoring
		err error
	)
	sc.Total = len(l.Scores(false))
	if sc.Min, err = l.Min(); err != nil {
		return nil, err
	}
	if sc.Max, err = l.Max(); err != nil {
		return nil, err
	}
	if sc.Average, err = l.Average(); err != nil {
		return nil, err
	}
	if sc.Median, err = l.Median(); err != nil {
		return nil, err
	}
	if sc.Mode, err = l.Mode(); err != nil {
		return nil, err
	}
	if sc.StandardDeviation, err = l.StandardDeviation(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Render prints the user block and one table per list.
func Render(w io.Writer, s Summary) {
	user := table.NewWriter()
	user.SetOutputMirror(w)
	user.SetStyle(table.StyleLight)
	user.SetTitle("User")
	user.AppendRow(table.Row{"Username", s.Info.UserName})
	user.AppendRow(table.Row{"User ID", s.Info.UserID})
	user.Render()

	for _, k := range []KindSummary{s.Anime, s.Manga} {
		fmt.Fprintln(w)
		renderKind(w, k)
	}
}

func renderKind(w io.Writer, k KindSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(titleCase(string(k.Kind)))

	header := table.Row{"Total"}
	row := table.Row{k.Total}
	for _, st := range k.Statuses {
		header = append(header, st.Status)
		row = append(row, st.Count)
	}
	t.AppendHeader(header)
	t.AppendRow(row)
	t.Render()

	if k.Scoring == nil {
		return
	}

	sc := table.NewWriter()
	sc.SetOutputMirror(w)
	sc.SetStyle(table.StyleLight)
	sc.SetTitle("Scoring")
	sc.AppendHeader(table.Row{"Scored", "Range", "Average", "Median", "Mode", "SD"})
	sc.AppendRow(table.Row{
		k.Scoring.Total,
		fmt.Sprintf("%d~%d", k.Scoring.Min, k.Scoring.Max),
		fmt.Sprintf("%.2f", k.Scoring.Average),
		strconv.FormatFloat(k.Scoring.Median, 'g', -1, 64),
		k.Scoring.Mode,
		fmt.Sprintf("%.2f", k.Scoring.StandardDeviation),
	})
	sc.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	sc.Render()

	fmt.Fprintln(w, "Improper tagged:", improperLine(k))
}

func improperLine(k KindSummary) string {
	switch {
	case !k.TagsEnabled:
		return "tag validation is off"
	case len(k.ImproperTagged) == 0:
		return fmt.Sprintf("none, every %s entry is tagged properly", k.Kind)
	default:
		return strings.Join(k.ImproperTagged, ", ")
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
