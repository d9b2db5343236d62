package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("DASHBOARD_HOME", root)
	t.Setenv("DASHBOARD_CONFIG", "")
	t.Setenv("OCR_LANG", "")
	t.Setenv("FERNET_KEY", "")
	return root
}

func TestDefaultConfig(t *testing.T) {
	root := isolate(t)
	cfg := DefaultConfig()

	if want := filepath.Join(root, "data", "dashboard.db"); cfg.Database.Path != want {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, want)
	}
	if cfg.OCR.DPI != 300 {
		t.Errorf("OCR.DPI = %d, want 300", cfg.OCR.DPI)
	}
	if cfg.Extract.MinChars != 20 {
		t.Errorf("Extract.MinChars = %d, want 20", cfg.Extract.MinChars)
	}
	if cfg.Search.Limit != 50 || cfg.Search.SnippetTokens != 12 {
		t.Errorf("Search = %+v, want limit 50 / 12 tokens", cfg.Search)
	}
	if cfg.Extract.Workers < 1 {
		t.Errorf("Extract.Workers = %d, want >= 1", cfg.Extract.Workers)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := isolate(t)
	t.Setenv("DASHBOARD_CONFIG", filepath.Join(root, "custom.toml"))

	cfg := DefaultConfig()
	cfg.OCR.Lang = "eng+spa"
	cfg.Search.Limit = 10
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Error("Load() without a file should equal DefaultConfig()")
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "bad.toml")
	if err := os.WriteFile(path, []byte("[ocr\nlang = "), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DASHBOARD_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestOCRLangEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("OCR_LANG", "spa")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OCR.Lang != "spa" {
		t.Errorf("OCR.Lang = %q, want spa", cfg.OCR.Lang)
	}
}

func TestLoadSecrets(t *testing.T) {
	tests := []struct {
		env  string
		want []string
	}{
		{"", nil},
		{"k1", []string{"k1"}},
		{"k1, k2 ,,", []string{"k1", "k2"}},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			isolate(t)
			t.Setenv("FERNET_KEY", tt.env)
			if got := LoadSecrets().FernetKeys; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadSecrets(%q) = %v, want %v", tt.env, got, tt.want)
			}
		})
	}
}

func TestDerivedPaths(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.Database.Path = "/srv/dashboard/dashboard.db"
	cfg.Storage.DataDir = "/srv/dashboard/files"

	if got := cfg.LockPath(); got != "/srv/dashboard/index.lock" {
		t.Errorf("LockPath() = %q", got)
	}
	if got := cfg.AttachmentsDir(); got != "/srv/dashboard/files/attachments" {
		t.Errorf("AttachmentsDir() = %q", got)
	}
	if got := cfg.DocumentsDir(); got != "/srv/dashboard/files/documents" {
		t.Errorf("DocumentsDir() = %q", got)
	}
}
