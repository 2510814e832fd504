package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxScore is the highest score an entry can carry; zero means unscored.
const MaxScore = 10

// Record is implemented by Anime and Manga.
type Record interface {
	Base() Entry
	Kind() Kind
	Title() string
	ExternalID() int
}

// Entry holds the fields every list entry carries regardless of kind.
type Entry struct {
	MyID           int    `json:"my_id"`
	StartDate      Date   `json:"my_start_date"`
	FinishDate     Date   `json:"my_finish_date"`
	Score          int    `json:"my_score"` // 0..10, 0 = not scored
	Storage        string `json:"my_storage,omitempty"`
	Status         Status `json:"my_status"`
	Comments       string `json:"my_comments,omitempty"`
	Tags           string `json:"my_tags,omitempty"` // comma-separated, "" = untagged
	UpdateOnImport bool   `json:"update_on_import"`
}

func (e Entry) Base() Entry { return e }

func (e Entry) Scored() bool { return e.Score != 0 }

func (e Entry) Tagged() bool { return strings.TrimSpace(e.Tags) != "" }

// CheckScore rejects scores outside 0..MaxScore.
func CheckScore(n int) error {
	if n < 0 || n > MaxScore {
		return fmt.Errorf("score %d out of range 0..%d", n, MaxScore)
	}
	return nil
}

// ParseScore reads a score as exported. A blank score is unscored.
func ParseScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q", s)
	}
	if err := CheckScore(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Date is a list date as exported; "" and "0000-00-00" mean unset.
type Date string

var dateLayouts = []string{"2006-01-02", "01-02-06", "01-02-2006", "02-01-06"}

func (d Date) Valid() bool {
	_, ok := d.Time()
	return ok
}

func (d Date) Time() (time.Time, bool) {
	s := strings.TrimSpace(string(d))
	if s == "" || strings.HasPrefix(s, "0000") {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
