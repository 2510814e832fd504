package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malstats/internal/list"
	"malstats/internal/source"
	"malstats/pkg/models"
	"malstats/pkg/utils"
)

func testConfig(t *testing.T) *utils.Config {
	dir := t.TempDir()
	return &utils.Config{
		Source:   utils.SourceConfig{Mode: "xml", DataDir: dir},
		List:     utils.ListConfig{Options: list.AllStatuses(), ManualAnimeSort: []string{"TV"}},
		Tags:     utils.TagsConfig{Enabled: true, MustBeTagged: []string{"Completed"}, RulesFile: filepath.Join(dir, "TAG_RULES.txt")},
		Charts:   utils.ChartsConfig{OutputDir: filepath.Join(dir, "charts")},
		Database: utils.DatabaseConfig{Path: filepath.Join(dir, "db", "malstats.db")},
		Auth:     utils.AuthConfig{JWTSecret: "s", JWTIssuer: "malstats", JWTDuration: time.Hour},
	}
}

func TestLiveSource(t *testing.T) {
	live, err := LiveSource(utils.SourceConfig{Mode: "api", BaseURL: "http://example.test", MaxPages: 3}, nil)
	require.NoError(t, err)
	api, ok := live("alice").(*source.APISource)
	require.True(t, ok)
	assert.Equal(t, "alice", api.Username)
	assert.Equal(t, 3, api.MaxPages)

	live, err = LiveSource(utils.SourceConfig{Mode: "xml", DataDir: "data"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "xml", live("anyone").Name())

	_, err = LiveSource(utils.SourceConfig{Mode: "ftp"}, nil)
	assert.Error(t, err)
}

func TestLoadTagging(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Tags.RulesFile, []byte("a, b\n"), 0o644))

	policy, rules, err := LoadTagging(cfg.Tags, nil)
	require.NoError(t, err)
	assert.True(t, policy.Enabled)
	assert.Equal(t, []models.Phase{models.PhaseCompleted}, policy.MustBeTagged)
	assert.True(t, rules.Allows("b,a"))

	cfg.Tags.MustBeTagged = []string{"Sleeping"}
	_, _, err = LoadTagging(cfg.Tags, nil)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	a, err := New(testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"TV"}, a.Service.ManualSort)
	assert.NotNil(t, a.Service.Notifier)
	tok, _, err := a.Tokens.Sign("ops")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.NotNil(t, a.ChartWriter())
}
