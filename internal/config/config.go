package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Translator backend names.
const (
	BackendGoogle = "google"
	BackendDeepL  = "deepl"
)

// Config holds application configuration. Scalars come from
// baseDir/config.json; secrets come from the environment (optionally seeded
// from baseDir/.env).
type Config struct {
	// TranslatorBackend selects the translation service: "google" or "deepl".
	TranslatorBackend string `json:"translator_backend,omitempty"`

	// DefaultSourceLang and DefaultTargetLang are the languages assumed by
	// the CLI when no flags are given.
	DefaultSourceLang string `json:"default_source_lang,omitempty"`
	DefaultTargetLang string `json:"default_target_lang,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// GoogleTranslateAPI is the endpoint URL for the Google translation
	// proxy. Environment: GOOGLE_TRANSLATE_API. Never stored in config.json.
	GoogleTranslateAPI string `json:"-"`

	// DeepLAPIKey authenticates against the DeepL API.
	// Environment: DEEPL_API_KEY. Never stored in config.json.
	DeepLAPIKey string `json:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TranslatorBackend: BackendGoogle,
		DefaultSourceLang: "en",
		DefaultTargetLang: "ja",
	}
}

// Load loads configuration from baseDir/config.json and overlays secrets
// from the environment. Returns defaults if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.kotoba.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	cfg.loadEnv(baseDir)
	return cfg, nil
}

// loadEnv fills the secret fields from the environment, seeding it from
// baseDir/.env first if present (missing file is fine).
func (c *Config) loadEnv(baseDir string) {
	_ = godotenv.Load(filepath.Join(baseDir, ".env"))

	if v := os.Getenv("GOOGLE_TRANSLATE_API"); v != "" {
		c.GoogleTranslateAPI = v
	}
	if v := os.Getenv("DEEPL_API_KEY"); v != "" {
		c.DeepLAPIKey = v
	}
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.TranslatorBackend = overlay.TranslatorBackend
	if result.TranslatorBackend == "" {
		result.TranslatorBackend = base.TranslatorBackend
	}

	result.DefaultSourceLang = overlay.DefaultSourceLang
	if result.DefaultSourceLang == "" {
		result.DefaultSourceLang = base.DefaultSourceLang
	}

	result.DefaultTargetLang = overlay.DefaultTargetLang
	if result.DefaultTargetLang == "" {
		result.DefaultTargetLang = base.DefaultTargetLang
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	result.GoogleTranslateAPI = overlay.GoogleTranslateAPI
	if result.GoogleTranslateAPI == "" {
		result.GoogleTranslateAPI = base.GoogleTranslateAPI
	}
	result.DeepLAPIKey = overlay.DeepLAPIKey
	if result.DeepLAPIKey == "" {
		result.DeepLAPIKey = base.DeepLAPIKey
	}

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
