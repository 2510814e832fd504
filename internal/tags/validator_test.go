package tags

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malstats/pkg/models"
)

func defaultPolicy(t *testing.T) Policy {
	t.Helper()
	p, err := ParsePolicy(true,
		[]string{"Watching", "Completed", "On-Hold"},
		[]string{"Dropped", "Planned"},
		[]string{"Watching", "Completed", "On-Hold"},
	)
	require.NoError(t, err)
	return p
}

func show(title string, status models.Status, tags string) models.Anime {
	return models.Anime{Entry: models.Entry{Status: status, Tags: tags}, SeriesTitle: title}
}

func TestValidateStatusRules(t *testing.T) {
	records := []models.Anime{
		show("Untagged Watching", models.StatusWatching, ""),
		show("Tagged Dropped", models.StatusDropped, "action"),
		show("Tagged Planned", models.StatusPlanToWatch, "drama"),
		show("Fine", models.StatusCompleted, "action"),
		show("Untagged Dropped", models.StatusDropped, "  "),
	}

	got := Validate(records, defaultPolicy(t), NewRules())
	assert.Equal(t, []string{"Tagged Dropped", "Tagged Planned", "Untagged Watching"}, got)
}

func TestValidateCombinationRules(t *testing.T) {
	rules, err := LoadRules(strings.NewReader("Action, Drama\n\ncomedy\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, rules.Len())

	records := []models.Anime{
		show("Allowed", models.StatusCompleted, " drama ,ACTION"),
		show("Unknown Combo", models.StatusCompleted, "action,comedy"),
		show("Not Checked", models.StatusDropped, ""),
	}
	got := Validate(records, defaultPolicy(t), rules)
	assert.Equal(t, []string{"Unknown Combo"}, got)
	assert.Equal(t, " drama ,ACTION", records[0].Tags, "records are not normalised in place")
}

func TestValidateMangaUsesPhases(t *testing.T) {
	records := []models.Manga{
		{Entry: models.Entry{Status: models.StatusReading}, MangaTitle: "Berserk"},
		{Entry: models.Entry{Status: models.StatusPlanToRead, Tags: "seinen"}, MangaTitle: "Vagabond"},
	}
	got := Validate(records, defaultPolicy(t), nil)
	assert.Equal(t, []string{"Berserk", "Vagabond"}, got)
}

func TestValidateDistinctAndDisabled(t *testing.T) {
	records := []models.Anime{
		show("Same", models.StatusWatching, ""),
		show("Same", models.StatusOnHold, ""),
	}
	assert.Equal(t, []string{"Same"}, Validate(records, defaultPolicy(t), nil))

	p := defaultPolicy(t)
	p.Enabled = false
	assert.Empty(t, Validate(records, p, nil))
}

func TestParsePolicyRejectsUnknownStatus(t *testing.T) {
	_, err := ParsePolicy(true, []string{"Binging"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Binging")
}

func TestLoadRulesFile(t *testing.T) {
	dir := t.TempDir()

	rules, found, err := LoadRulesFile(filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, rules.Len())

	path := filepath.Join(dir, "TAG_RULES.txt")
	require.NoError(t, os.WriteFile(path, []byte("romance,comedy\n"), 0o644))
	rules, found, err = LoadRulesFile(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, rules.Allows("Comedy, Romance"))
	assert.False(t, rules.Allows("comedy"))
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Canonical(" C,a , B"))
}
