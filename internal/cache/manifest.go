package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const (
	manifestVersion = 1
	manifestName    = "manifest.json"
)

// Entry is the manifest record for one cached file.
type Entry struct {
	Key      string    `json:"key"`
	Path     string    `json:"path"`      // relative to the cache dir, slash separated
	Source   string    `json:"source"`    // what the entry was derived from, e.g. "attachment:12"
	StoredAt time.Time `json:"stored_at"`
	Size     int64     `json:"size"`
	Checksum string    `json:"checksum"` // SHA-256 of the stored bytes
}

// Manifest is the on-disk index of a cache directory.
type Manifest struct {
	Version int               `json:"version"`
	Entries map[string]*Entry `json:"entries"`
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		Version: manifestVersion,
		Entries: make(map[string]*Entry),
	}
}

// LoadManifest reads manifest.json from dir. A missing file yields an empty
// manifest.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewManifest(), nil
		}
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Entries == nil {
		m.Entries = make(map[string]*Entry)
	}
	return &m, nil
}

// Save writes the manifest atomically.
func (m *Manifest) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	tmp := filepath.Join(dir, "."+manifestName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, manifestName))
}

func (m *Manifest) Add(key string, entry *Entry) {
	m.Entries[key] = entry
}

func (m *Manifest) Get(key string) (*Entry, bool) {
	entry, ok := m.Entries[key]
	return entry, ok
}

func (m *Manifest) Delete(key string) {
	delete(m.Entries, key)
}

// TotalSize returns the summed size of all entries in bytes.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, entry := range m.Entries {
		total += entry.Size
	}
	return total
}

func (m *Manifest) Count() int {
	return len(m.Entries)
}
