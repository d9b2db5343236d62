package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPutGetValidate(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	entry, err := c.Put(AttachmentKey(7), "attachment:7", strings.NewReader("%PDF searchable"))
	if err != nil {
		t.Fatal(err)
	}
	if entry.Size != int64(len("%PDF searchable")) {
		t.Errorf("Size = %d", entry.Size)
	}

	path, got, err := c.Get(AttachmentKey(7))
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != "attachment:7" {
		t.Errorf("Source = %q, want attachment:7", got.Source)
	}
	if filepath.Base(path) != "att-7.pdf" {
		t.Errorf("path = %q, want .../att-7.pdf", path)
	}

	ok, err := c.Validate(AttachmentKey(7))
	if err != nil || !ok {
		t.Fatalf("Validate() = %v, %v; want true", ok, err)
	}

	if err := os.WriteFile(path, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, _ := c.Validate(AttachmentKey(7)); ok {
		t.Error("Validate() = true after tampering")
	}
}

func TestManifestPersists(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Put("ocr/att-1.pdf", "attachment:1", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.Has("ocr/att-1.pdf") {
		t.Error("entry lost after reopening")
	}
	if reopened.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reopened.Count())
	}
}

func TestGetMissingFileEvicts(t *testing.T) {
	c, _ := New(t.TempDir())
	if _, err := c.Put("ocr/att-2.pdf", "attachment:2", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	path, _, _ := c.Get("ocr/att-2.pdf")
	_ = os.Remove(path)

	if _, _, err := c.Get("ocr/att-2.pdf"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() err = %v, want ErrMiss", err)
	}
	if c.Count() != 0 {
		t.Errorf("Count() = %d after eviction, want 0", c.Count())
	}
}

func TestPutRejectsEscapingKey(t *testing.T) {
	c, _ := New(t.TempDir())
	if _, err := c.Put("../outside", "x", strings.NewReader("x")); err == nil {
		t.Error("expected error for key with ..")
	}
}

func TestTextRoundTrip(t *testing.T) {
	c, _ := New(t.TempDir())
	key := TextKey("abc123", "eng", 300, 0)
	text := strings.Repeat("Marion County Sheriff's Office incident report. ", 50)

	if err := c.PutText(key, "project:3", text); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.GetText(key)
	if err != nil || !ok {
		t.Fatalf("GetText() ok=%v err=%v", ok, err)
	}
	if got != text {
		t.Error("GetText() returned different text")
	}

	entries := c.List("text/")
	if len(entries) != 1 || entries[0].Size >= int64(len(text)) {
		t.Errorf("expected one compressed entry, got %+v", entries)
	}
}

func TestGetTextMiss(t *testing.T) {
	c, _ := New(t.TempDir())
	_, ok, err := c.GetText(TextKey("nope", "eng", 300, 0))
	if ok || err != nil {
		t.Errorf("GetText() on miss = ok %v, err %v", ok, err)
	}
}

func TestPruneAndClear(t *testing.T) {
	c, _ := New(t.TempDir())
	for _, k := range []string{"ocr/att-1.pdf", "ocr/att-2.pdf", "text/a-eng-300-0.txt.zst"} {
		if _, err := c.Put(k, "", strings.NewReader("data")); err != nil {
			t.Fatal(err)
		}
	}
	c.manifest.Entries["ocr/att-1.pdf"].StoredAt = time.Now().Add(-48 * time.Hour)

	n, err := c.Prune(24 * time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Prune() = %d, want 1", n)
	}
	if got := len(c.List("ocr/")); got != 1 {
		t.Errorf("List(ocr/) = %d entries, want 1", got)
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", c.Size())
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{AttachmentKey(42), "ocr/att-42.pdf"},
		{TextKey("deadbeef", "eng+spa", 300, 5), "text/deadbeef-eng+spa-300-5.txt.zst"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestAppDirHomeOverride(t *testing.T) {
	root := t.TempDir()
	t.Setenv("DASHBOARD_HOME", root)

	for name, fn := range map[string]func() (string, error){
		"config": ConfigDir,
		"data":   DataDir,
		"cache":  CacheDir,
	} {
		got, err := fn()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(root, name); got != want {
			t.Errorf("%sDir() = %q, want %q", name, got, want)
		}
	}
}
