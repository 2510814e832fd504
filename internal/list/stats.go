package list

import (
	"math"
	"sort"

	"malstats/pkg/models"
)

// MaxScore is the highest score a record can carry; zero means unscored.
const MaxScore = models.MaxScore

// Scores returns the score of every visible entry, in list order.
func (l *List[T]) Scores(includeUnscored bool) []int {
	return scoresOf(l.Visible(includeUnscored))
}

// SummedScores is a histogram of the visible scores. Buckets run 0..10 when
// includeUnscored is set and 1..10 otherwise.
func (l *List[T]) SummedScores(includeUnscored bool) []int {
	return histogram(l.Scores(includeUnscored), includeUnscored)
}

func histogram(scores []int, includeUnscored bool) []int {
	lo := 1
	if includeUnscored {
		lo = 0
	}
	out := make([]int, MaxScore-lo+1)
	for _, s := range scores {
		if s < lo || s > MaxScore {
			continue
		}
		out[s-lo]++
	}
	return out
}

func (l *List[T]) scored() ([]int, error) {
	scores := l.Scores(false)
	if len(scores) == 0 {
		return nil, ErrNoScores
	}
	return scores, nil
}

func (l *List[T]) Min() (int, error) {
	scores, err := l.scored()
	if err != nil {
		return 0, err
	}
	m := scores[0]
	for _, s := range scores[1:] {
		m = min(m, s)
	}
	return m, nil
}

func (l *List[T]) Max() (int, error) {
	scores, err := l.scored()
	if err != nil {
		return 0, err
	}
	m := scores[0]
	for _, s := range scores[1:] {
		m = max(m, s)
	}
	return m, nil
}

func (l *List[T]) Average() (float64, error) {
	scores, err := l.scored()
	if err != nil {
		return 0, err
	}
	return mean(scores), nil
}

// Median averages the two middle scores when the count is even.
func (l *List[T]) Median() (float64, error) {
	scores, err := l.scored()
	if err != nil {
		return 0, err
	}
	sort.Ints(scores)
	n := len(scores)
	if n%2 == 0 {
		return float64(scores[n/2-1]+scores[n/2]) / 2, nil
	}
	return float64(scores[n/2]), nil
}

// Mode returns the most frequent score. Ties go to the lowest score.
func (l *List[T]) Mode() (int, error) {
	scores, err := l.scored()
	if err != nil {
		return 0, err
	}
	buckets := histogram(scores, false)
	best := 0
	for i, c := range buckets {
		if c > buckets[best] {
			best = i
		}
	}
	return best + 1, nil
}

// StandardDeviation is the population standard deviation of the scores.
func (l *List[T]) StandardDeviation() (float64, error) {
	scores, err := l.scored()
	if err != nil {
		return 0, err
	}
	avg := mean(scores)
	var sum float64
	for _, s := range scores {
		d := float64(s) - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(scores))), nil
}

func mean(scores []int) float64 {
	total := 0
	for _, s := range scores {
		total += s
	}
	return float64(total) / float64(len(scores))
}
