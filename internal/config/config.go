// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata" // birth timezones must resolve without system zoneinfo
)

// Defaults applied by MergeWithDefaults when neither the file nor the environment sets a value.
const (
	DefaultPort             = 8080
	DefaultBirthTimezone    = "Asia/Seoul"
	DefaultChatHistoryLimit = 20
	DefaultMemoryLimit      = 20
)

// Config represents the service configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment or defaults.
type Config struct {
	// Server
	Port          int    `json:"port,omitempty"`           // HTTP listen port
	AllowedOrigin string `json:"allowed_origin,omitempty"` // CORS origin, "*" when empty

	// Backends
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	ChatModel   string `json:"chat_model,omitempty"`   // Overrides the standard-tier model

	// Chart
	BirthTimezone string `json:"birth_timezone,omitempty"` // IANA zone for birth times given without one

	// Chat
	ChatHistoryLimit int `json:"chat_history_limit,omitempty"` // Messages loaded into each prompt
	MemoryLimit      int `json:"memory_limit,omitempty"`       // Memories loaded into each prompt

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Debug logging
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Unset or malformed
// numeric variables are left at zero so that defaults apply.
func FromEnv() Config {
	return Config{
		Port:             envInt("PORT"),
		AllowedOrigin:    os.Getenv("CORS_ALLOWED_ORIGIN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		APIKey:           os.Getenv("GEMINI_API_KEY"),
		ChatModel:        os.Getenv("GEMINI_CHAT_MODEL"),
		BirthTimezone:    os.Getenv("BIRTH_TIMEZONE"),
		ChatHistoryLimit: envInt("CHAT_HISTORY_LIMIT"),
		MemoryLimit:      envInt("MEMORY_LIMIT"),
	}
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those depend on the command.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.ChatHistoryLimit < 0 {
		return fmt.Errorf("config error: 'chat_history_limit' must be non-negative")
	}
	if c.MemoryLimit < 0 {
		return fmt.Errorf("config error: 'memory_limit' must be non-negative")
	}
	if c.BirthTimezone != "" {
		if _, err := time.LoadLocation(c.BirthTimezone); err != nil {
			return fmt.Errorf("config error: unknown birth_timezone %q: %w", c.BirthTimezone, err)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the package defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.AllowedOrigin == "" {
		result.AllowedOrigin = defaults.AllowedOrigin
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.ChatModel == "" {
		result.ChatModel = defaults.ChatModel
	}
	if result.BirthTimezone == "" {
		result.BirthTimezone = defaults.BirthTimezone
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.ChatHistoryLimit == 0 {
		result.ChatHistoryLimit = defaults.ChatHistoryLimit
	}
	if result.MemoryLimit == 0 {
		result.MemoryLimit = defaults.MemoryLimit
	}

	// Package defaults
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.BirthTimezone == "" {
		result.BirthTimezone = DefaultBirthTimezone
	}
	if result.ChatHistoryLimit == 0 {
		result.ChatHistoryLimit = DefaultChatHistoryLimit
	}
	if result.MemoryLimit == 0 {
		result.MemoryLimit = DefaultMemoryLimit
	}
	if result.AllowedOrigin == "" {
		result.AllowedOrigin = "*"
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Location returns the configured birth timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BirthTimezone)
	if err != nil || c.BirthTimezone == "" {
		return time.UTC
	}
	return loc
}
