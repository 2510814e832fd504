// Package app wires configuration into the database, document sources and
// statistics service shared by every binary.
package app

import (
	"database/sql"
	"fmt"

	"malstats/internal/auth"
	"malstats/internal/chartdata"
	"malstats/internal/source"
	"malstats/internal/stats"
	"malstats/internal/store"
	synchub "malstats/internal/sync"
	"malstats/internal/tags"
	"malstats/pkg/database"
	"malstats/pkg/logger"
	"malstats/pkg/utils"
)

type App struct {
	Config  *utils.Config
	Log     logger.Logger
	DB      *sql.DB
	Repo    *store.Repo
	Hub     *synchub.Hub
	Service *stats.Service
	Tokens  auth.TokenService
}

// LiveSource returns the configured document source factory.
func LiveSource(cfg utils.SourceConfig, log logger.Logger) (stats.LiveFunc, error) {
	switch cfg.Mode {
	case "api":
		return func(userName string) source.Source {
			s := source.NewAPISource(cfg.BaseURL, userName, log)
			s.MaxPages = cfg.MaxPages
			return s
		}, nil
	case "xml":
		return func(string) source.Source {
			return source.NewXMLSource(cfg.DataDir, log)
		}, nil
	default:
		return nil, fmt.Errorf("unknown source mode %q", cfg.Mode)
	}
}

// LoadTagging builds the tag policy and reads the rule file. A missing rule
// file is only reported when validation is on.
func LoadTagging(cfg utils.TagsConfig, log logger.Logger) (tags.Policy, *tags.Rules, error) {
	if log == nil {
		log = logger.NewNop()
	}
	policy, err := tags.ParsePolicy(cfg.Enabled, cfg.MustBeTagged, cfg.MustBeUntagged, cfg.ApplyTagRules)
	if err != nil {
		return tags.Policy{}, nil, fmt.Errorf("tag policy: %w", err)
	}
	rules, found, err := tags.LoadRulesFile(cfg.RulesFile)
	if err != nil {
		return tags.Policy{}, nil, err
	}
	if !found && cfg.Enabled {
		log.Warn("[tags] rule file not found, combination check skipped", logger.String("path", cfg.RulesFile))
	}
	return policy, rules, nil
}

// New opens the database and builds the service. Close releases it.
func New(cfg *utils.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}

	live, err := LiveSource(cfg.Source, log)
	if err != nil {
		return nil, err
	}
	policy, rules, err := LoadTagging(cfg.Tags, log)
	if err != nil {
		return nil, err
	}

	db, err := database.OpenAndMigrate(database.Config{Path: cfg.Database.Path})
	if err != nil {
		return nil, err
	}

	hub := synchub.NewHub(log)
	repo := store.NewRepo(db)

	svc := stats.NewService(repo, live, log)
	svc.Opts = cfg.List.Options
	svc.Policy = policy
	svc.Rules = rules
	svc.ManualSort = cfg.List.ManualAnimeSort
	svc.Notifier = hub

	return &App{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Repo:    repo,
		Hub:     hub,
		Service: svc,
		Tokens:  auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTDuration),
	}, nil
}

func (a *App) ChartWriter() *chartdata.Writer {
	return chartdata.NewWriter(a.Config.Charts.OutputDir, a.Config.List.ManualAnimeSort, a.Log)
}

func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.DB.Close()
}
