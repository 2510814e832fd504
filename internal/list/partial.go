package list

import (
	"math"
	"sort"
)

type Part string

const (
	PartTop    Part = "top"
	PartBottom Part = "bottom"
	PartMiddle Part = "middle"
)

type Rounding string

const (
	RoundFloor Rounding = "floor"
	RoundCeil  Rounding = "ceil"
	// RoundHalfEven rounds halves to the nearest even integer.
	RoundHalfEven Rounding = "round"
	// RoundX floors exact multiples of one half and otherwise rounds.
	RoundX Rounding = "roundx"
)

// PartialOptions selects a score-ordered slice of the visible list.
type PartialOptions struct {
	Percentage      float64  `json:"percentage"`
	Part            Part     `json:"part"`
	Rounding        Rounding `json:"rounding"`
	IncludeUnscored bool     `json:"include_unscored"`
}

// Partial sorts the visible list by descending score and returns the top,
// bottom or middle Percentage of it.
func (l *List[T]) Partial(opts PartialOptions) ([]T, error) {
	if opts.Percentage < 0 || opts.Percentage > 100 || math.IsNaN(opts.Percentage) {
		return nil, configErr("partial", formatFloat(opts.Percentage), ErrInvalidPercentage)
	}

	entries := l.Visible(opts.IncludeUnscored)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Base().Score > entries[j].Base().Score
	})

	count, err := roundCount(opts.Percentage/100*float64(len(entries)), opts.Rounding)
	if err != nil {
		return nil, err
	}

	switch opts.Part {
	case PartTop:
		return pySlice(entries, 0, count), nil
	case PartBottom:
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
		return pySlice(entries, 0, count), nil
	case PartMiddle:
		middle := len(entries) / 2
		upper := middle + count/2
		lower := middle - (count+1)/2
		return pySlice(entries, lower, upper), nil
	default:
		return nil, configErr("partial", string(opts.Part), ErrInvalidPart)
	}
}

// PartialAverage is the mean score of Partial's selection.
func (l *List[T]) PartialAverage(opts PartialOptions) (float64, error) {
	entries, err := l.Partial(opts)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, ErrEmptyPartial
	}
	return mean(scoresOf(entries)), nil
}

func roundCount(x float64, method Rounding) (int, error) {
	switch method {
	case RoundFloor:
		return int(math.Floor(x)), nil
	case RoundCeil:
		return int(math.Ceil(x)), nil
	case RoundHalfEven:
		return int(math.RoundToEven(x)), nil
	case RoundX:
		if math.Mod(x, 0.5) == 0 {
			return int(math.Floor(x)), nil
		}
		return int(math.RoundToEven(x)), nil
	default:
		return 0, configErr("partial", string(method), ErrInvalidRounding)
	}
}

// pySlice returns s[lo:hi] where negative bounds count from the end and
// out-of-range bounds are clamped, yielding an empty slice when lo >= hi.
func pySlice[T any](s []T, lo, hi int) []T {
	n := len(s)
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		return max(0, min(i, n))
	}
	lo, hi = clamp(lo), clamp(hi)
	if lo >= hi {
		return []T{}
	}
	out := make([]T, hi-lo)
	copy(out, s[lo:hi])
	return out
}
