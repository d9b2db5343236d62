// Package config loads settings from a TOML file in the user's config
// directory and secrets from the environment.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	OCR      OCRConfig      `toml:"ocr"`
	Extract  ExtractConfig  `toml:"extract"`
	Search   SearchConfig   `toml:"search"`
	Server   ServerConfig   `toml:"server"`
	Display  DisplayConfig  `toml:"display"`
}

// DatabaseConfig holds database-related settings.
type DatabaseConfig struct {
	Path string `toml:"path"` // SQLite database file
}

// StorageConfig holds where uploads and derived files live.
type StorageConfig struct {
	DataDir     string `toml:"data_dir"`      // Root for stored documents and encrypted attachments
	OCRCacheDir string `toml:"ocr_cache_dir"` // Searchable attachment copies and cached OCR text
}

// OCRConfig holds OCR tool settings.
type OCRConfig struct {
	Lang                  string `toml:"lang"`                    // Tesseract language(s), e.g. "eng" or "eng+spa"
	DPI                   int    `toml:"dpi"`                     // Rasterization resolution
	MaxPages              int    `toml:"max_pages"`               // Page cap for OCR during uploads (0 = all)
	CommandTimeoutSeconds int    `toml:"command_timeout_seconds"` // Per-subprocess timeout
	UploadTimeoutSeconds  int    `toml:"upload_timeout_seconds"`  // Budget for indexing a single upload
	OCRmyPDF              string `toml:"ocrmypdf"`                // ocrmypdf binary
	Tesseract             string `toml:"tesseract"`               // tesseract binary
	Pdftoppm              string `toml:"pdftoppm"`                // pdftoppm binary
	OptimizeLevel         int    `toml:"optimize_level"`          // ocrmypdf --optimize level
}

// ExtractConfig holds text extraction settings.
type ExtractConfig struct {
	MinChars int `toml:"min_chars"` // Direct text shorter than this triggers OCR
	Workers  int `toml:"workers"`   // Parallel extractions during backfill
}

// SearchConfig holds search-related settings.
type SearchConfig struct {
	Limit         int `toml:"limit"`          // Maximum results per query
	SnippetTokens int `toml:"snippet_tokens"` // Excerpt length in tokens
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DisplayConfig holds display-related settings.
type DisplayConfig struct {
	ColorOutput *bool `toml:"color_output"` // Enable colored output (nil = auto)
}

// Secrets are read from the environment only, never from the TOML file.
type Secrets struct {
	FernetKeys []string // FERNET_KEY, comma separated, newest first
}

// Load reads the configuration from the config path or uses defaults. A .env
// file in the working directory is loaded first so OCR_LANG can override the
// file value.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configPath, err := configFilePath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if lang := strings.TrimSpace(os.Getenv("OCR_LANG")); lang != "" {
		cfg.OCR.Lang = lang
	}

	return cfg, nil
}

// LoadSecrets reads secrets from the environment (and .env).
func LoadSecrets() Secrets {
	_ = godotenv.Load()

	var keys []string
	for _, k := range strings.Split(os.Getenv("FERNET_KEY"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return Secrets{FernetKeys: keys}
}

// Save writes the configuration to the config path.
func (cfg *Config) Save() error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// FilePath returns the config file location.
func FilePath() (string, error) {
	return configFilePath()
}

func configFilePath() (string, error) {
	if path := os.Getenv("DASHBOARD_CONFIG"); path != "" {
		return path, nil
	}

	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.toml"), nil
}
