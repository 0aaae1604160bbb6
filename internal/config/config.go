package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Rules sources.
const (
	RulesFromFile = "file"
	RulesFromDB   = "db"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"MISRecon"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"misrecon"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"120s"`
		MaxUploadMB int64         `envconfig:"MAX_UPLOAD_MB" default:"50"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS"`
	}

	Rules struct {
		// Source is "file" for a YAML rules file or "db" for Postgres.
		Source string `envconfig:"RULES_SOURCE" default:"file"`
		// File is read when Source is "file"; empty means built-in defaults.
		File string `envconfig:"RULES_FILE"`
		// StrictDates keeps unparsed dates out of final reconciliation.
		StrictDates bool `envconfig:"STRICT_DATES" default:"false"`
	}

	Artifacts struct {
		Dir string `envconfig:"ARTIFACT_DIR" default:"uploads"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// MaxUploadBytes is the multipart size limit for one request.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	cfg.Rules.Source = strings.ToLower(strings.TrimSpace(cfg.Rules.Source))
	if cfg.Rules.Source != RulesFromFile && cfg.Rules.Source != RulesFromDB {
		return nil, fmt.Errorf("invalid RULES_SOURCE %q: want %s or %s", cfg.Rules.Source, RulesFromFile, RulesFromDB)
	}

	if cfg.Server.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %d", cfg.Server.MaxUploadMB)
	}

	return &cfg, nil
}
