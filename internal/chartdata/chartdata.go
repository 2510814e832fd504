// Package chartdata writes the grouped and summed list data an external chart
// renderer draws, one JSON file per chart.
package chartdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"malstats/internal/list"
	"malstats/internal/profile"
	"malstats/pkg/logger"
)

type ChartType string

const (
	Pie     ChartType = "pie"
	Bar     ChartType = "horizontal_stacked_bar"
	Treemap ChartType = "treemap"
)

type Point struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

type Chart struct {
	Type   ChartType `json:"type"`
	Title  string    `json:"title"`
	Labels []string  `json:"x_labels,omitempty"`
	Series []Series  `json:"series"`
}

// Possessive renders "alice's" or "james'".
func Possessive(name string) string {
	if strings.HasSuffix(name, "s") {
		return name + "'"
	}
	return name + "'s"
}

func share(n, total int) string {
	if total == 0 {
		return fmt.Sprintf("%d/%d", n, total)
	}
	return fmt.Sprintf("%d/%d (%.2f%%)", n, total, 100*float64(n)/float64(total))
}

// PieChart has one series per category sized by its entry count.
func PieChart[V any](title string, groups []list.Group[V]) Chart {
	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}
	c := Chart{Type: Pie, Title: title}
	for _, g := range groups {
		c.Series = append(c.Series, Series{
			Name:   g.Key,
			Points: []Point{{Value: len(g.Items), Label: share(len(g.Items), total)}},
		})
	}
	return c
}

func histogramLabels(buckets int) []string {
	lo := list.MaxScore - buckets + 1
	out := make([]string, 0, buckets)
	for s := lo; s <= list.MaxScore; s++ {
		out = append(out, strconv.Itoa(s))
	}
	return out
}

func histogramPoints(counts []int, total int) []Point {
	out := make([]Point, len(counts))
	for i, n := range counts {
		out[i] = Point{Value: n, Label: share(n, total)}
	}
	return out
}

// BarChart draws a single score histogram.
func BarChart(title string, histogram []int) Chart {
	total := 0
	for _, n := range histogram {
		total += n
	}
	return Chart{
		Type:   Bar,
		Title:  title,
		Labels: histogramLabels(len(histogram)),
		Series: []Series{{Name: "Scored", Points: histogramPoints(histogram, total)}},
	}
}

// GroupedBarChart stacks one histogram per category.
func GroupedBarChart(title string, groups []list.Group[int]) Chart {
	total := 0
	for _, g := range groups {
		for _, n := range g.Items {
			total += n
		}
	}
	c := Chart{Type: Bar, Title: title}
	if len(groups) > 0 {
		c.Labels = histogramLabels(len(groups[0].Items))
	}
	for _, g := range groups {
		c.Series = append(c.Series, Series{Name: g.Key, Points: histogramPoints(g.Items, total)})
	}
	return c
}

// TreemapChart takes tuples of (score, title) per category.
func TreemapChart(title string, groups []list.Group[list.Tuple]) Chart {
	c := Chart{Type: Treemap, Title: title}
	for _, g := range groups {
		s := Series{Name: g.Key, Points: make([]Point, 0, len(g.Items))}
		for _, tup := range g.Items {
			score, _ := tup[0].(int)
			s.Points = append(s.Points, Point{Value: score, Label: fmt.Sprint(tup[1])})
		}
		c.Series = append(c.Series, s)
	}
	return c
}

// Writer builds the standard chart set for a user and saves it under Dir.
type Writer struct {
	Dir        string
	ManualSort []string
	Log        logger.Logger
}

func NewWriter(dir string, manualSort []string, log logger.Logger) *Writer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Writer{Dir: dir, ManualSort: manualSort, Log: log}
}

// Build returns the charts keyed by file name. Anime charts are present only
// when the anime list has scored entries, and likewise for manga.
func (w *Writer) Build(u *profile.User) (map[string]Chart, error) {
	owner := Possessive(u.Info.UserName)
	charts := make(map[string]Chart)

	if len(u.Anime.Scores(false)) > 0 {
		byType := list.GroupOptions{GroupBy: "series_type", ManualSort: w.ManualSort}

		types, err := u.Anime.GroupedFields(byType, "my_score", "series_title")
		if err != nil {
			return nil, fmt.Errorf("group anime by type: %w", err)
		}
		charts["anime_series_types"] = PieChart(owner+" Anime Series Types", types)
		charts["anime_treemap"] = TreemapChart(owner+" Scored Anime Treemap", types)
		charts["anime_scored"] = BarChart(owner+" Scored Anime Titles", u.Anime.SummedScores(false))

		summed, err := u.Anime.SummedGroupedScores(byType)
		if err != nil {
			return nil, fmt.Errorf("sum anime scores by type: %w", err)
		}
		charts["anime_scored_by_series_type"] = GroupedBarChart(owner+" Scored Anime Titles (By Series Type)", summed)
	}

	if len(u.Manga.Scores(false)) > 0 {
		charts["manga_scored"] = BarChart(owner+" Scored Manga Titles", u.Manga.SummedScores(false))
	}
	return charts, nil
}

// Write saves every chart as <Dir>/<name>.json and returns the paths written.
func (w *Writer) Write(u *profile.User) ([]string, error) {
	charts, err := w.Build(u)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	var paths []string
	for _, name := range sortedNames(charts) {
		b, err := json.MarshalIndent(charts[name], "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode chart %s: %w", name, err)
		}
		path := filepath.Join(w.Dir, name+".json")
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return nil, fmt.Errorf("write chart %s: %w", name, err)
		}
		w.Log.Info("[charts] exported", logger.String("chart", name))
		paths = append(paths, path)
	}
	return paths, nil
}

func sortedNames(charts map[string]Chart) []string {
	out := make([]string, 0, len(charts))
	for name := range charts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
