package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/NewsNowIndy/Dashboard/internal/cache"
)

// ConfigDir returns the configuration directory.
func ConfigDir() (string, error) {
	return cache.ConfigDir()
}

// LockPath is the index writer lock file kept beside the database.
func (cfg *Config) LockPath() string {
	return filepath.Join(filepath.Dir(cfg.Database.Path), "index.lock")
}

// DocumentsDir is where project documents are stored content-addressed.
func (cfg *Config) DocumentsDir() string {
	return filepath.Join(cfg.Storage.DataDir, "documents")
}

// AttachmentsDir is where encrypted FOIA attachments are stored.
func (cfg *Config) AttachmentsDir() string {
	return filepath.Join(cfg.Storage.DataDir, "attachments")
}

// CommandTimeout bounds each OCR subprocess.
func (cfg *Config) CommandTimeout() time.Duration {
	return time.Duration(cfg.OCR.CommandTimeoutSeconds) * time.Second
}

// UploadTimeout bounds indexing of a single upload.
func (cfg *Config) UploadTimeout() time.Duration {
	return time.Duration(cfg.OCR.UploadTimeoutSeconds) * time.Second
}

// EnsureDirs creates the database, storage and cache directories.
func (cfg *Config) EnsureDirs() error {
	for _, dir := range []string{
		filepath.Dir(cfg.Database.Path),
		cfg.DocumentsDir(),
		cfg.AttachmentsDir(),
		cfg.Storage.OCRCacheDir,
	} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
