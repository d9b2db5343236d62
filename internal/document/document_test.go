package document

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIndexable(t *testing.T) {
	tests := []struct {
		name string
		ref  Ref
		want bool
	}{
		{"pdf mime", Ref{Kind: Project, MimeType: "application/pdf"}, true},
		{"pdf mime with params", Ref{Kind: Project, MimeType: "Application/PDF; charset=binary"}, true},
		{"pdf filename upper", Ref{Kind: Project, Filename: "REPORT.PDF"}, true},
		{"pdf stored path", Ref{Kind: Project, StoredPath: "/data/abc.pdf"}, true},
		{"attachment ocr copy", Ref{Kind: Attachment, StoredPath: "/data/abc.enc", OCRPath: "/cache/att-1.pdf"}, true},
		{"docx", Ref{Kind: Project, Filename: "memo.docx", MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, false},
		{"encrypted blob only", Ref{Kind: Attachment, StoredPath: "/data/abc.enc"}, false},
		{"pdf inside name", Ref{Kind: Project, Filename: "file.pdf.txt"}, false},
		{"media transcript", Ref{Kind: Media, Transcript: "hello"}, true},
		{"media blank transcript", Ref{Kind: Media, Transcript: "  \n"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Indexable(); got != tt.want {
				t.Errorf("Indexable(%+v) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		ref  Ref
		want string
	}{
		{Ref{Kind: Project, ID: 1, Title: "Use of force", Filename: "uof.pdf"}, "Use of force"},
		{Ref{Kind: Project, ID: 1, Filename: "uof.pdf"}, "uof.pdf"},
		{Ref{Kind: Project, ID: 1}, "Untitled"},
		{Ref{Kind: Attachment, ID: 9}, "Attachment 9"},
		{Ref{Kind: Media, ID: 3}, "Media 3"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ref.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(" " + string(k) + " ")
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("email"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestKeyDistinguishesSources(t *testing.T) {
	a := Ref{Kind: Project, ID: 7}
	b := Ref{Kind: Attachment, ID: 7}
	if a.Key() == b.Key() {
		t.Errorf("Key() collision: %q", a.Key())
	}
}

func TestFernetRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	other, _ := GenerateKey()

	c, err := NewFernetCipher(other + "," + key)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := c.Encrypt([]byte("%PDF-1.4 secret"))
	if err != nil {
		t.Fatal(err)
	}

	reader, err := NewFernetCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reader.Decrypt(tok); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt with non-matching key, got %v", err)
	}

	plain, err := c.Decrypt(tok)
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != "%PDF-1.4 secret" {
		t.Errorf("Decrypt() = %q", plain)
	}
}

func TestNewFernetCipherNoKey(t *testing.T) {
	if _, err := NewFernetCipher("", " , "); !errors.Is(err, ErrNoKey) {
		t.Errorf("expected ErrNoKey, got %v", err)
	}
}

func TestResolverDecryptsToTempAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	key, _ := GenerateKey()
	c, _ := NewFernetCipher(key)

	payload := []byte("%PDF-1.4 attachment body")
	tok, err := c.Encrypt(payload)
	if err != nil {
		t.Fatal(err)
	}
	enc := filepath.Join(dir, "blob.enc")
	if err := os.WriteFile(enc, tok, 0o600); err != nil {
		t.Fatal(err)
	}

	tmpDir := filepath.Join(dir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(c, tmpDir)
	m, err := r.Open(Ref{Kind: Attachment, ID: 7, StoredPath: enc, Encrypted: true, Filename: "a.pdf"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(m.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("temp file content = %q, want %q", got, payload)
	}

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(m.Path); !os.IsNotExist(err) {
		t.Errorf("expected temp file %s to be removed, stat err = %v", m.Path, err)
	}

	entries, _ := os.ReadDir(tmpDir)
	if len(entries) != 0 {
		t.Errorf("expected empty temp dir, found %d entries", len(entries))
	}
}

func TestResolverFailedDecryptLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	enc := filepath.Join(dir, "blob.enc")
	if err := os.WriteFile(enc, []byte("not a token"), 0o600); err != nil {
		t.Fatal(err)
	}
	key, _ := GenerateKey()
	c, _ := NewFernetCipher(key)

	r := NewResolver(c, dir)
	if _, err := r.Open(Ref{Kind: Attachment, ID: 1, StoredPath: enc, Encrypted: true}); err == nil {
		t.Fatal("expected decrypt error")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the encrypted blob in %s, found %d entries", dir, len(entries))
	}
}

func TestResolverPrefersOCRCopy(t *testing.T) {
	dir := t.TempDir()
	ocr := filepath.Join(dir, "att-3.pdf")
	if err := os.WriteFile(ocr, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(nil, dir)
	m, err := r.Open(Ref{Kind: Attachment, ID: 3, StoredPath: filepath.Join(dir, "missing.enc"), OCRPath: ocr, Encrypted: true})
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if m.Path != ocr {
		t.Errorf("Path = %q, want %q", m.Path, ocr)
	}
}

func TestResolverMediaIsInline(t *testing.T) {
	r := NewResolver(nil, "")
	m, err := r.Open(Ref{Kind: Media, ID: 2, Transcript: "deputy chief said"})
	if err != nil {
		t.Fatal(err)
	}
	if !m.Inline() || m.Text != "deputy chief said" {
		t.Errorf("unexpected material %+v", m)
	}
}

func TestResolverMissingFile(t *testing.T) {
	r := NewResolver(nil, "")
	if _, err := r.Open(Ref{Kind: Project, ID: 1, StoredPath: "/nonexistent/file.pdf"}); err == nil {
		t.Error("expected error for missing project file")
	}
}
