// ABOUTME: Configuration loader for the health analyzer backend.
// ABOUTME: Loads settings from an optional YAML file, overridden by environment variables.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCommands is the fixed asadm command catalogue run against each
// uploaded collectinfo bundle. Kept small to keep parsing prompts bounded.
var DefaultCommands = []string{
	"info",
	"show stat like client_write",
	"summary",
}

type Config struct {
	// Server
	Port               string
	CacheTTL           int      // seconds, default cache TTL
	ListTTL            int      // seconds, for list/details responses (default 15s)
	CORSAllowedOrigins []string // allowed CORS origins (empty = allow all)

	// Rate limiting
	RateLimitEnabled bool
	RateLimitUpload  int // requests per minute for upload endpoints (default 20)
	RateLimitDefault int // requests per minute for all other endpoints (default 100)

	// Uploads
	UploadDir   string
	MaxUploadMB int

	// Processing pipeline
	AsadmBinary    string
	AsadmCommands  []string
	ProcessTimeout int // seconds, whole-job deadline (default 600)

	// Structured parsing (Anthropic)
	AnthropicAPIKey string
	AnthropicModel  string
}

// fileConfig mirrors Config for the optional YAML file. Environment
// variables always win over file values.
type fileConfig struct {
	Port               string   `yaml:"port"`
	CacheTTL           int      `yaml:"cache_ttl"`
	ListTTL            int      `yaml:"list_ttl"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitEnabled   *bool    `yaml:"rate_limit_enabled"`
	RateLimitUpload    int      `yaml:"rate_limit_upload"`
	RateLimitDefault   int      `yaml:"rate_limit_default"`
	UploadDir          string   `yaml:"upload_dir"`
	MaxUploadMB        int      `yaml:"max_upload_mb"`
	AsadmBinary        string   `yaml:"asadm_binary"`
	AsadmCommands      []string `yaml:"asadm_commands"`
	ProcessTimeout     int      `yaml:"process_timeout"`
	AnthropicModel     string   `yaml:"anthropic_model"`
}

// ParserConfigured returns true if an API key for the structured parser is set.
func (c *Config) ParserConfigured() bool {
	return c.AnthropicAPIKey != ""
}

func Load() (*Config, error) {
	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               getEnv("PORT", pick(file.Port, "8080")),
		CacheTTL:           getEnvInt("CACHE_TTL", pickInt(file.CacheTTL, 300)),
		ListTTL:            getEnvInt("LIST_CACHE_TTL", pickInt(file.ListTTL, 15)),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS", file.CORSAllowedOrigins),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", pickBool(file.RateLimitEnabled, true)),
		RateLimitUpload:  getEnvInt("RATE_LIMIT_UPLOAD", pickInt(file.RateLimitUpload, 20)),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", pickInt(file.RateLimitDefault, 100)),

		UploadDir:   getEnv("UPLOAD_DIR", pick(file.UploadDir, os.TempDir())),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", pickInt(file.MaxUploadMB, 512)),

		AsadmBinary:    getEnv("ASADM_BINARY", pick(file.AsadmBinary, "asadm")),
		AsadmCommands:  file.AsadmCommands,
		ProcessTimeout: getEnvInt("PROCESS_TIMEOUT", pickInt(file.ProcessTimeout, 600)),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", pick(file.AnthropicModel, "claude-sonnet-4-20250514")),
	}

	if len(cfg.AsadmCommands) == 0 {
		cfg.AsadmCommands = DefaultCommands
	}

	// Validate rate limit values
	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_UPLOAD", cfg.RateLimitUpload},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	if cfg.MaxUploadMB < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be at least 1, got %d", cfg.MaxUploadMB)
	}
	if cfg.ProcessTimeout < 1 {
		return nil, fmt.Errorf("PROCESS_TIMEOUT must be at least 1, got %d", cfg.ProcessTimeout)
	}

	return cfg, nil
}

// loadFile reads the optional YAML config file. A missing path is not an
// error; a named file that cannot be read or parsed is.
func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return fc, nil
}

func pick(fileValue, fallback string) string {
	if fileValue != "" {
		return fileValue
	}
	return fallback
}

func pickInt(fileValue, fallback int) int {
	if fileValue != 0 {
		return fileValue
	}
	return fallback
}

func pickBool(fileValue *bool, fallback bool) bool {
	if fileValue != nil {
		return *fileValue
	}
	return fallback
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
