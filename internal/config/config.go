package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Duration unmarshals from either a duration string ("24h", "500ms") or a
// JSON number of nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*d = Duration(time.Duration(t))
		return nil
	case string:
		parsed, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", t, err)
		}
		*d = Duration(parsed)
		return nil
	}
	return fmt.Errorf("invalid duration %s", string(data))
}

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Backend BackendConfig `json:"backend"`
	Uploads UploadsConfig `json:"uploads"`
	Drafts  DraftsConfig  `json:"drafts"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string   `json:"host"`
	Port         int      `json:"port"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
	IdleTimeout  Duration `json:"idle_timeout"`
}

// BackendConfig points at the marketplace backend this service fronts
type BackendConfig struct {
	BaseURL        string   `json:"base_url"`
	RequestTimeout Duration `json:"request_timeout"`
	MaxRetries     int      `json:"max_retries"`
}

// UploadsConfig bounds client-side document screening
type UploadsConfig struct {
	MaxFileBytes         int64    `json:"max_file_bytes"`
	MaxFilesPerStep      int      `json:"max_files_per_step"`
	AcceptedTypes        []string `json:"accepted_types"`
	MaxConcurrentUploads int      `json:"max_concurrent_uploads"`
}

// DraftsConfig selects the draft persistence policy. "memory" drafts do not
// survive a restart; "postgres" drafts do.
type DraftsConfig struct {
	Store         string   `json:"store"` // "memory" or "postgres"
	PostgresURL   string   `json:"postgres_url"`
	TTL           Duration `json:"ttl"`
	SweepSchedule string   `json:"sweep_schedule"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:9000",
			RequestTimeout: Duration(30 * time.Second),
			MaxRetries:     3,
		},
		Uploads: UploadsConfig{
			MaxFileBytes:    10 << 20,
			MaxFilesPerStep: 5,
			AcceptedTypes:   []string{"application/pdf", "image/png", "image/jpeg"},
		},
		Drafts: DraftsConfig{
			Store:         "memory",
			TTL:           Duration(24 * time.Hour),
			SweepSchedule: "@every 10m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	// Sibling uploads share the per-step file cap unless configured lower
	if config.Uploads.MaxConcurrentUploads <= 0 {
		config.Uploads.MaxConcurrentUploads = config.Uploads.MaxFilesPerStep
	}

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if base := os.Getenv("BACKEND_BASE_URL"); base != "" {
		config.Backend.BaseURL = base
	}
	if store := os.Getenv("DRAFT_STORE"); store != "" {
		config.Drafts.Store = store
	}
	if pgURL := os.Getenv("DRAFT_POSTGRES_URL"); pgURL != "" {
		config.Drafts.PostgresURL = pgURL
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
