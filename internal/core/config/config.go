package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Credential variables read without the RBM_ prefix.
const (
	EnvAccountToken = "ACCOUNT_READ_ACCESS_TOKEN_FOR_METRICS"
	EnvProjectToken = "ROLLBAR_PROJECT_READ_ACCESS_TOKEN"

	envPrefix = "RBM_"
)

// Run modes.
const (
	ModeAccount = "account"
	ModeProject = "project"
)

// Config is the whole configuration of a run. It is loaded once in main and
// passed down.
type Config struct {
	Rollbar  RollbarConfig  `koanf:"rollbar"`
	Reports  ReportsConfig  `koanf:"reports"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
}

type RollbarConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	AccountToken      string        `koanf:"account_token"`
	ProjectToken      string        `koanf:"project_token"`
	ProjectName       string        `koanf:"project_name"`
	AllowedTokenNames []string      `koanf:"allowed_token_names"`
}

type ReportsConfig struct {
	Dir       string `koanf:"dir"`
	OutputDir string `koanf:"output_dir"`
}

type LogConfig struct {
	Level      string `koanf:"level"`  // debug | info | warn | error
	Format     string `koanf:"format"` // text | json
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

type DatabaseConfig struct {
	Enabled      bool   `koanf:"enabled"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// Mode reports whether projects are discovered with the account token or a
// single project is queried with the project token.
func (c *Config) Mode() string {
	if c.Rollbar.AccountToken != "" {
		return ModeAccount
	}
	return ModeProject
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Rollbar.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid rollbar.base_url %q", c.Rollbar.BaseURL)
	}
	if c.Rollbar.Timeout <= 0 {
		return fmt.Errorf("rollbar.timeout must be > 0")
	}
	if c.Rollbar.AccountToken == "" && c.Rollbar.ProjectToken == "" {
		return fmt.Errorf("no access token configured: set %s or %s", EnvAccountToken, EnvProjectToken)
	}
	if c.Rollbar.AccountToken != "" && len(c.Rollbar.AllowedTokenNames) == 0 {
		return fmt.Errorf("rollbar.allowed_token_names must not be empty")
	}
	if c.Mode() == ModeProject && strings.TrimSpace(c.Rollbar.ProjectName) == "" {
		return fmt.Errorf("rollbar.project_name is required with a project token")
	}

	if strings.TrimSpace(c.Reports.OutputDir) == "" {
		return fmt.Errorf("reports.output_dir is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (must be debug, info, warn or error)", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q (must be text or json)", c.Log.Format)
	}
	if c.Log.File != "" && c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0")
	}

	if c.Database.Enabled {
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required when database.enabled is set")
		}
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be > 0")
		}
		if c.Database.MaxIdleConns <= 0 {
			return fmt.Errorf("database.max_idle_conns must be > 0")
		}
	}

	return nil
}

// LogValue keeps tokens and the DSN out of logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("mode", c.Mode()),
		slog.String("base_url", c.Rollbar.BaseURL),
		slog.Duration("timeout", c.Rollbar.Timeout),
		slog.Any("allowed_token_names", c.Rollbar.AllowedTokenNames),
		slog.String("reports_dir", c.Reports.Dir),
		slog.String("output_dir", c.Reports.OutputDir),
		slog.String("log_level", c.Log.Level),
		slog.Bool("database_enabled", c.Database.Enabled),
	)
}

// Load reads, in increasing precedence: defaults, the YAML file at
// configPath, RBM_ variables ("__" separates nested keys) and the two
// credential variables. envPath names an optional dotenv file that is loaded
// into the environment first; variables already set are kept.
func Load(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	k := koanf.New(".")

	defaults := map[string]interface{}{
		"rollbar.base_url":            "https://api.rollbar.com",
		"rollbar.timeout":             "30s",
		"rollbar.project_name":        "project",
		"rollbar.allowed_token_names": []string{"read", "metrics_api_token"},
		"reports.dir":                 "./reports",
		"reports.output_dir":          ".",
		"log.level":                   "info",
		"log.format":                  "text",
		"log.file":                    "",
		"log.max_size_mb":             100,
		"log.max_backups":             3,
		"log.max_age_days":            28,
		"log.compress":                false,
		"database.enabled":            false,
		"database.dsn":                "",
		"database.max_open_conns":     5,
		"database.max_idle_conns":     2,
		"database.auto_migrate":       true,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", prefixedKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if err := k.Load(env.Provider("", ".", credentialKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load credential env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// listKeys are split on "," when set from the environment.
var listKeys = map[string]bool{
	"rollbar.allowed_token_names": true,
}

// prefixedKey maps RBM_ROLLBAR__TIMEOUT onto rollbar.timeout.
func prefixedKey(key, value string) (string, interface{}) {
	key = strings.Replace(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "__", ".", -1)
	if !listKeys[key] {
		return key, value
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// credentialKey maps the credential variables onto config keys and drops
// every other variable.
func credentialKey(s string) string {
	switch s {
	case EnvAccountToken:
		return "rollbar.account_token"
	case EnvProjectToken:
		return "rollbar.project_token"
	default:
		return ""
	}
}
