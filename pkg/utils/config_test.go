package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "api", cfg.Source.Mode)
	assert.True(t, cfg.List.IncludePlanned)
	assert.Equal(t, []string{"TV", "Movie", "Special", "OVA", "ONA", "Music"}, cfg.List.ManualAnimeSort)
	assert.False(t, cfg.Tags.Enabled)
	assert.Equal(t, []string{"Dropped", "Planned"}, cfg.Tags.MustBeUntagged)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTDuration)
	assert.Equal(t, ":50051", cfg.Grpc.Addr)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "malstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  mode: xml
  data_dir: exports
list:
  include_planned: false
tags:
  enabled: true
  must_be_tagged: [Reading]
auth:
  jwt_ttl: 2h
`), 0o644))
	t.Setenv("MALSTATS_SOURCE_USERNAME", "alice")
	t.Setenv("MALSTATS_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "xml", cfg.Source.Mode)
	assert.Equal(t, "exports", cfg.Source.DataDir)
	assert.Equal(t, "alice", cfg.Source.Username)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.False(t, cfg.List.IncludePlanned)
	assert.True(t, cfg.List.IncludeDropped)
	assert.True(t, cfg.Tags.Enabled)
	assert.Equal(t, []string{"Reading"}, cfg.Tags.MustBeTagged)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTDuration)
}

func TestLoadRejectsBadMode(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MALSTATS_SOURCE_MODE", "ftp")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.mode")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
