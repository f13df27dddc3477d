package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Configuration struct {
	ApiPort  string `json:"api_port" env:"PORT, overwrite"`
	LogPath  string `json:"log_path" env:"LOG_PATH, overwrite"`
	LogLevel string `json:"log_level" env:"LOG_LEVEL, overwrite"`
	LogSQL   bool   `json:"log_sql" env:"LOG_SQL, overwrite"`

	Database   string `json:"database" env:"DATABASE, overwrite"` // "sqlite3" ou "postgres"
	DbHost     string `json:"db_host" env:"PGHOST, overwrite"`
	DbPort     string `json:"db_port" env:"PGPORT, overwrite"`
	DbUser     string `json:"db_user" env:"PGUSER, overwrite"`
	DbName     string `json:"db_name" env:"PGDATABASE, overwrite"`
	DbPass     string `json:"db_pass" env:"PGPASSWORD, overwrite"`
	DbSSLMode  string `json:"db_sslmode" env:"PGSSLMODE, overwrite"`
	SqlitePath string `json:"sqlite_path" env:"SQLITE_PATH, overwrite"`

	DbMaxOpenConns int  `json:"db_max_open_conns" env:"DB_MAX_OPEN_CONNS, overwrite"`
	DbMaxIdleConns int  `json:"db_max_idle_conns" env:"DB_MAX_IDLE_CONNS, overwrite"`
	AutoMigrate    bool `json:"automigrate" env:"AUTOMIGRATE, overwrite"`

	CatalogPath   string `json:"catalog_path" env:"CATALOG_PATH, overwrite"`
	PromptPersona string `json:"prompt_persona" env:"PROMPT_PERSONA, overwrite"`

	MaxConcurrentGrading int     `json:"max_concurrent_grading" env:"MAX_CONCURRENT_GRADING, overwrite"`
	RateLimitPerSecond   float64 `json:"rate_limit_per_second" env:"RATE_LIMIT_PER_SECOND, overwrite"`
	RateLimitBurst       int     `json:"rate_limit_burst" env:"RATE_LIMIT_BURST, overwrite"`

	LLM struct {
		BaseURL        string `json:"base_url" env:"LITELLM_API_BASE, overwrite"`
		APIKey         string `json:"api_key" env:"GRADIO_API_KEY, overwrite"`
		Model          string `json:"model" env:"GRADIO_LLM_MODEL, overwrite"`
		TimeoutSeconds int    `json:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS, overwrite"`
	} `json:"llm"`
}

// Timeout is the per-call bound on the provider round trip.
func (c Configuration) Timeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// Get loads the configuration and stops the process if it cannot be read.
func Get(path string) Configuration {
	c, err := Load(path)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

// Load reads the JSON file at path (optional), then .env, then the process
// environment. Environment values win over the file.
func Load(path string) (Configuration, error) {
	var c Configuration

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// só env
		case err != nil:
			return c, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := json.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env é opcional (dev local)
	_ = godotenv.Load()

	if err := envconfig.Process(context.Background(), &c); err != nil {
		return c, fmt.Errorf("read environment: %w", err)
	}

	applyDefaults(&c)
	return c, nil
}

func applyDefaults(c *Configuration) {
	if c.ApiPort == "" {
		c.ApiPort = "7860"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.DbPort == "" {
		c.DbPort = "5432"
	}
	if c.DbSSLMode == "" {
		c.DbSSLMode = "disable"
	}
	if c.SqlitePath == "" {
		c.SqlitePath = "db/database.db"
	}
	if c.DbMaxOpenConns <= 0 {
		c.DbMaxOpenConns = 20
	}
	if c.DbMaxIdleConns <= 0 {
		c.DbMaxIdleConns = 5
	}
	if c.CatalogPath == "" {
		c.CatalogPath = "assignment_map.json"
	}
	if c.MaxConcurrentGrading <= 0 {
		c.MaxConcurrentGrading = 400
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 5
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4.1-mini"
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 60
	}
}
