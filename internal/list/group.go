package list

import (
	"sort"

	"malstats/pkg/models"
)

type SortMethod string

const (
	SortMostCommon   SortMethod = "most_common"
	SortAlphabetical SortMethod = "alphabetical"
)

type SortOrder string

const (
	Descending SortOrder = "descending"
	Ascending  SortOrder = "ascending"
)

// GroupOptions configures Grouped and the views built on it. Empty
// SortMethod and SortOrder mean most_common and descending.
type GroupOptions struct {
	IncludeUnscored bool       `json:"include_unscored"`
	GroupBy         string     `json:"group_by"`
	SortMethod      SortMethod `json:"sort_method"`
	SortOrder       SortOrder  `json:"sort_order"`
	// ManualSort lists category keys to put first, in this order.
	ManualSort []string `json:"manual_sort,omitempty"`
}

// Group is one category of a grouped list.
type Group[V any] struct {
	Key   string `json:"key"`
	Items []V    `json:"items"`
}

// Tuple is a record disassembled into the requested field values.
type Tuple []any

// Find returns the group with the given key.
func Find[V any](groups []Group[V], key string) (Group[V], bool) {
	for _, g := range groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group[V]{}, false
}

// Keys returns the category keys in order.
func Keys[V any](groups []Group[V]) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

// Grouped partitions the visible list by a field, ordering categories by
// frequency or name and then applying the manual override.
func (l *List[T]) Grouped(opts GroupOptions) ([]Group[T], error) {
	acc, err := l.fields.lookup(opts.GroupBy)
	if err != nil {
		return nil, err
	}
	desc, err := descending(opts.SortOrder)
	if err != nil {
		return nil, err
	}

	entries := l.Visible(opts.IncludeUnscored)

	keys := make([]string, len(entries))
	counts := make(map[string]int)
	var categories []string
	for i, r := range entries {
		k := categoryKey(acc(r))
		keys[i] = k
		if _, seen := counts[k]; !seen {
			categories = append(categories, k)
		}
		counts[k]++
	}

	switch opts.SortMethod {
	case SortMostCommon, "":
		sort.SliceStable(categories, func(i, j int) bool {
			if desc {
				return counts[categories[i]] > counts[categories[j]]
			}
			return counts[categories[i]] < counts[categories[j]]
		})
	case SortAlphabetical:
		sort.SliceStable(categories, func(i, j int) bool {
			if desc {
				return categories[i] > categories[j]
			}
			return categories[i] < categories[j]
		})
	default:
		return nil, configErr("group", string(opts.SortMethod), ErrInvalidSortMethod)
	}

	if opts.ManualSort != nil {
		categories = applyManualSort(categories, opts.ManualSort)
	}

	index := make(map[string]int, len(categories))
	groups := make([]Group[T], len(categories))
	for i, k := range categories {
		index[k] = i
		groups[i] = Group[T]{Key: k, Items: make([]T, 0, counts[k])}
	}
	for i, r := range entries {
		g := &groups[index[keys[i]]]
		g.Items = append(g.Items, r)
	}
	return groups, nil
}

func descending(order SortOrder) (bool, error) {
	switch order {
	case Descending, "":
		return true, nil
	case Ascending:
		return false, nil
	default:
		return false, configErr("group", string(order), ErrInvalidSortOrder)
	}
}

// applyManualSort moves the override keys that are present to the front, in
// override order, keeping the rest in their computed order.
func applyManualSort(categories, manual []string) []string {
	remaining := make([]string, len(categories))
	copy(remaining, categories)

	out := make([]string, 0, len(categories))
	for _, m := range manual {
		for i, c := range remaining {
			if c == m {
				out = append(out, c)
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return append(out, remaining...)
}

// GroupedFields is Grouped with every record replaced by the values of the
// named fields, in the order given.
func (l *List[T]) GroupedFields(opts GroupOptions, fields ...string) ([]Group[Tuple], error) {
	accs := make([]Accessor[T], len(fields))
	for i, name := range fields {
		acc, err := l.fields.lookup(name)
		if err != nil {
			return nil, err
		}
		accs[i] = acc
	}

	groups, err := l.Grouped(opts)
	if err != nil {
		return nil, err
	}

	out := make([]Group[Tuple], len(groups))
	for i, g := range groups {
		items := make([]Tuple, len(g.Items))
		for j, r := range g.Items {
			t := make(Tuple, len(accs))
			for k, acc := range accs {
				t[k] = acc(r)
			}
			items[j] = t
		}
		out[i] = Group[Tuple]{Key: g.Key, Items: items}
	}
	return out, nil
}

// GroupedScores is Grouped with every record replaced by its score.
func (l *List[T]) GroupedScores(opts GroupOptions) ([]Group[int], error) {
	groups, err := l.Grouped(opts)
	if err != nil {
		return nil, err
	}
	out := make([]Group[int], len(groups))
	for i, g := range groups {
		out[i] = Group[int]{Key: g.Key, Items: scoresOf(g.Items)}
	}
	return out, nil
}

// SummedGroupedScores is a per-category score histogram.
func (l *List[T]) SummedGroupedScores(opts GroupOptions) ([]Group[int], error) {
	groups, err := l.GroupedScores(opts)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Items = histogram(groups[i].Items, opts.IncludeUnscored)
	}
	return groups, nil
}

func scoresOf[T models.Record](records []T) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Base().Score
	}
	return out
}
