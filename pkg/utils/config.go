package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"malstats/internal/list"
	"malstats/pkg/logger"
)

// EnvPrefix prefixes every environment override, e.g. MALSTATS_SOURCE_USERNAME.
const EnvPrefix = "MALSTATS"

type SourceConfig struct {
	// Mode is "api" or "xml".
	Mode     string `mapstructure:"mode"`
	Username string `mapstructure:"username"`
	DataDir  string `mapstructure:"data_dir"`
	BaseURL  string `mapstructure:"base_url"`
	MaxPages int    `mapstructure:"max_pages"`
}

type ListConfig struct {
	list.Options    `mapstructure:",squash"`
	ManualAnimeSort []string `mapstructure:"manual_anime_sort"`
}

type TagsConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	MustBeTagged   []string `mapstructure:"must_be_tagged"`
	MustBeUntagged []string `mapstructure:"must_be_untagged"`
	ApplyTagRules  []string `mapstructure:"apply_tag_rules"`
	RulesFile      string   `mapstructure:"rules_file"`
}

type ChartsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"output_dir"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr     string `mapstructure:"addr"`
	SyncAddr string `mapstructure:"sync_addr"`
}

type GrpcConfig struct {
	Addr string `mapstructure:"addr"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer"`
	JWTDuration time.Duration `mapstructure:"jwt_ttl"`
}

type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	List     ListConfig     `mapstructure:"list"`
	Tags     TagsConfig     `mapstructure:"tags"`
	Charts   ChartsConfig   `mapstructure:"charts"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Grpc     GrpcConfig     `mapstructure:"grpc"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      logger.Config  `mapstructure:"log"`
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".malstats", "data.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.mode", "api")
	v.SetDefault("source.username", "")
	v.SetDefault("source.data_dir", "data")
	v.SetDefault("source.base_url", "https://myanimelist.net")
	v.SetDefault("source.max_pages", 0)

	v.SetDefault("list.include_current", true)
	v.SetDefault("list.include_onhold", true)
	v.SetDefault("list.include_dropped", true)
	v.SetDefault("list.include_planned", true)
	v.SetDefault("list.manual_anime_sort", []string{"TV", "Movie", "Special", "OVA", "ONA", "Music"})

	v.SetDefault("tags.enabled", false)
	v.SetDefault("tags.must_be_tagged", []string{"Watching", "Completed", "On-Hold"})
	v.SetDefault("tags.must_be_untagged", []string{"Dropped", "Planned"})
	v.SetDefault("tags.apply_tag_rules", []string{"Watching", "Completed", "On-Hold"})
	v.SetDefault("tags.rules_file", "TAG_RULES.txt")

	v.SetDefault("charts.enabled", true)
	v.SetDefault("charts.output_dir", "charts")

	v.SetDefault("database.path", defaultDBPath())

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.sync_addr", ":9090")
	v.SetDefault("grpc.addr", ":50051")

	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.jwt_issuer", "malstats")
	v.SetDefault("auth.jwt_ttl", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.output_paths", []string{"stderr"})
}

// Load reads configuration from defaults, an optional YAML file, .env and
// MALSTATS_* environment variables, in increasing priority. An empty path
// searches for config.yaml in . and ./config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Source.Mode {
	case "api", "xml":
	default:
		return fmt.Errorf("config: source.mode must be api or xml, got %q", c.Source.Mode)
	}
	if c.Auth.JWTDuration <= 0 {
		return fmt.Errorf("config: auth.jwt_ttl must be positive")
	}
	return nil
}
