package config

import (
	"path/filepath"
	"runtime"

	"github.com/NewsNowIndy/Dashboard/internal/cache"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dataDir := defaultDir(cache.DataDir, "data")
	cacheDir := defaultDir(cache.CacheDir, "cache")

	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}

	return &Config{
		Database: DatabaseConfig{Path: filepath.Join(dataDir, "dashboard.db")},
		Storage:  StorageConfig{DataDir: dataDir, OCRCacheDir: cacheDir},
		OCR: OCRConfig{
			Lang: "eng", DPI: 300, MaxPages: 5,
			CommandTimeoutSeconds: 300, UploadTimeoutSeconds: 120,
			OCRmyPDF: "ocrmypdf", Tesseract: "tesseract", Pdftoppm: "pdftoppm",
			OptimizeLevel: 1,
		},
		Extract: ExtractConfig{MinChars: 20, Workers: workers},
		Search:  SearchConfig{Limit: 50, SnippetTokens: 12},
		Server:  ServerConfig{Addr: "127.0.0.1:8080"},
		Display: DisplayConfig{ColorOutput: nil},
	}
}

func defaultDir(fn func() (string, error), fallback string) string {
	dir, err := fn()
	if err != nil {
		return fallback
	}
	return dir
}
