// Package cache stores derived artifacts next to the database: searchable
// copies of attachments and compressed OCR text. Every entry is tracked in a
// JSON manifest with its SHA-256 checksum.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrMiss is returned by Get when the key is absent or its file is gone.
var ErrMiss = errors.New("cache miss")

// Cache is the set of operations the indexer and CLI need.
type Cache interface {
	Get(key string) (string, *Entry, error)
	Put(key, source string, r io.Reader) (*Entry, error)
	Has(key string) bool
	Delete(key string) error
	Validate(key string) (bool, error)
	Size() int64
	Prune(maxAge time.Duration) (int, error)
	Clear() error
	List(prefix string) []*Entry
}

// FilesystemCache implements Cache on a directory. It is safe for concurrent
// use within one process.
type FilesystemCache struct {
	mu       sync.Mutex
	dir      string
	manifest *Manifest
}

// New opens (creating if needed) the cache rooted at dir.
func New(dir string) (*FilesystemCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("load cache manifest: %w", err)
	}

	return &FilesystemCache{dir: dir, manifest: manifest}, nil
}

// Dir returns the cache directory path.
func (c *FilesystemCache) Dir() string {
	return c.dir
}

// Get returns the absolute path of the cached file for key.
func (c *FilesystemCache) Get(key string) (string, *Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.manifest.Get(key)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrMiss, key)
	}

	path := filepath.Join(c.dir, entry.Path)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_ = c.deleteLocked(key)
			return "", nil, fmt.Errorf("%w: %s (file missing)", ErrMiss, key)
		}
		return "", nil, err
	}

	return path, entry, nil
}

// Put streams r into the cache under key. The file is written to a temp name
// and renamed into place so readers never observe a partial file.
func (c *FilesystemCache) Put(key, source string, r io.Reader) (*Entry, error) {
	if key == "" || strings.Contains(key, "..") {
		return nil, fmt.Errorf("invalid cache key %q", key)
	}

	finalPath := filepath.Join(c.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(c.dir, ".cache_tmp_*")
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), r)
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	entry := &Entry{
		Key:      key,
		Path:     filepath.ToSlash(key),
		Source:   source,
		StoredAt: time.Now(),
		Size:     size,
		Checksum: hex.EncodeToString(hash.Sum(nil)),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Rename(tmpName, finalPath); err != nil {
		return nil, err
	}

	c.manifest.Add(key, entry)
	if err := c.manifest.Save(c.dir); err != nil {
		_ = os.Remove(finalPath)
		c.manifest.Delete(key)
		return nil, err
	}

	return entry, nil
}

// PutFile copies the file at path into the cache under key.
func (c *FilesystemCache) PutFile(key, source, path string) (*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.Put(key, source, f)
}

// Has reports whether key is present and its file still exists.
func (c *FilesystemCache) Has(key string) bool {
	_, _, err := c.Get(key)
	return err == nil
}

// Delete removes key and its file. Deleting a missing key is not an error.
func (c *FilesystemCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteLocked(key)
}

func (c *FilesystemCache) deleteLocked(key string) error {
	entry, ok := c.manifest.Get(key)
	if !ok {
		return nil
	}

	_ = os.Remove(filepath.Join(c.dir, entry.Path))
	c.manifest.Delete(key)
	return c.manifest.Save(c.dir)
}

// Validate recomputes the checksum of key's file and compares it with the
// manifest.
func (c *FilesystemCache) Validate(key string) (bool, error) {
	path, entry, err := c.Get(key)
	if err != nil {
		return false, err
	}

	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return false, err
	}

	return hex.EncodeToString(hash.Sum(nil)) == entry.Checksum, nil
}

// Size returns the total size of all entries in bytes.
func (c *FilesystemCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manifest.TotalSize()
}

// Count returns the number of entries.
func (c *FilesystemCache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manifest.Count()
}

// Prune removes entries stored more than maxAge ago. A zero maxAge removes
// only entries whose files have disappeared.
func (c *FilesystemCache) Prune(maxAge time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var stale []string
	for key, entry := range c.manifest.Entries {
		if maxAge > 0 && entry.StoredAt.Before(cutoff) {
			stale = append(stale, key)
			continue
		}
		if _, err := os.Stat(filepath.Join(c.dir, entry.Path)); err != nil {
			stale = append(stale, key)
		}
	}

	count := 0
	for _, key := range stale {
		if err := c.deleteLocked(key); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Clear removes every entry.
func (c *FilesystemCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.manifest.Entries {
		_ = os.Remove(filepath.Join(c.dir, entry.Path))
	}

	c.manifest = NewManifest()
	return c.manifest.Save(c.dir)
}

// List returns entries whose key starts with prefix, sorted by key.
func (c *FilesystemCache) List(prefix string) []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []*Entry
	for key, entry := range c.manifest.Entries {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// AttachmentKey is the key of the searchable copy of attachment id.
// Format: ocr/att-{id}.pdf
func AttachmentKey(id int64) string {
	return fmt.Sprintf("ocr/att-%d.pdf", id)
}

// TextKey is the key of cached OCR text for a file with the given content
// hash and OCR settings.
// Format: text/{sha256}-{lang}-{dpi}-{maxPages}.txt.zst
func TextKey(contentHash, lang string, dpi, maxPages int) string {
	return fmt.Sprintf("text/%s-%s-%d-%d.txt.zst", contentHash, lang, dpi, maxPages)
}
