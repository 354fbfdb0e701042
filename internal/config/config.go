package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPageSize      = 10
	defaultHTTPTimeout   = 15 * time.Second
	defaultMaxUploadSize = 10 << 20
	defaultReconcile     = 5 * time.Minute
)

// Config contains runtime settings for the job board client and its MCP surface
type Config struct {
	LogLevel string
	Host     string // default 0.0.0.0
	Port     string // default PORT env or 8080
	API      struct {
		BaseURL  string
		Token    string
		PageSize int
		Timeout  time.Duration
	} // job board REST API
	Upload struct {
		MaxFileSize int64
	}
	ReconcileInterval time.Duration // 0 disables periodic refresh
	Neo4j             struct {
		URI      string
		Username string
		Password string
	} // optional listing archive
	Sheets struct {
		CredentialsPath string
	}
	ExportDir string
}

// Neo4jEnabled reports whether the listing archive is configured
func (c Config) Neo4jEnabled() bool {
	return c.Neo4j.URI != ""
}

// Load populates config from environment variables, reading .env first when present
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:          "info",
		Host:              "0.0.0.0",
		Port:              "8080",
		ReconcileInterval: defaultReconcile,
		ExportDir:         "./exports",
	}
	cfg.API.PageSize = defaultPageSize
	cfg.API.Timeout = defaultHTTPTimeout
	cfg.Upload.MaxFileSize = defaultMaxUploadSize

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("MCP_HOST"); v != "" {
		cfg.Host = v
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	cfg.API.BaseURL = os.Getenv("JOBBOARD_API_URL")
	cfg.API.Token = os.Getenv("JOBBOARD_API_TOKEN")

	var invalid []string

	if v := os.Getenv("JOBBOARD_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			invalid = append(invalid, "JOBBOARD_PAGE_SIZE")
		} else {
			cfg.API.PageSize = n
		}
	}

	if v := os.Getenv("JOBBOARD_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			invalid = append(invalid, "JOBBOARD_HTTP_TIMEOUT")
		} else {
			cfg.API.Timeout = d
		}
	}

	if v := os.Getenv("UPLOAD_MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			invalid = append(invalid, "UPLOAD_MAX_FILE_SIZE")
		} else {
			cfg.Upload.MaxFileSize = n
		}
	}

	if v, ok := os.LookupEnv("RECONCILE_INTERVAL"); ok {
		switch v {
		case "", "0":
			cfg.ReconcileInterval = 0
		default:
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				invalid = append(invalid, "RECONCILE_INTERVAL")
			} else {
				cfg.ReconcileInterval = d
			}
		}
	}

	cfg.Neo4j.URI = os.Getenv("NEO4J_URI")
	cfg.Neo4j.Username = os.Getenv("NEO4J_USERNAME")
	cfg.Neo4j.Password = os.Getenv("NEO4J_PASSWORD")

	cfg.Sheets.CredentialsPath = os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH")

	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}

	var missingVars []string

	if cfg.API.BaseURL == "" {
		missingVars = append(missingVars, "JOBBOARD_API_URL")
	}

	// neo4j is optional, but partial credentials are a mistake
	if cfg.Neo4j.URI != "" {
		if cfg.Neo4j.Username == "" {
			missingVars = append(missingVars, "NEO4J_USERNAME")
		}
		if cfg.Neo4j.Password == "" {
			missingVars = append(missingVars, "NEO4J_PASSWORD")
		}
	}

	if len(missingVars) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	if len(invalid) > 0 {
		return cfg, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
