package document

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Material is the readable form of a document. Path is set for file-backed
// documents, Text for inline transcripts. Close must always be called.
type Material struct {
	Path    string
	Text    string
	release func()
}

// Inline reports whether the material carries its text directly.
func (m *Material) Inline() bool {
	return m.Path == ""
}

// Close releases any temporary plaintext copy.
func (m *Material) Close() error {
	if m == nil || m.release == nil {
		return nil
	}
	m.release()
	m.release = nil
	return nil
}

// Resolver locates the plaintext bytes behind a Ref.
type Resolver struct {
	decrypter Decrypter
	tempDir   string
}

// NewResolver creates a resolver. decrypter may be nil when no encrypted
// sources exist; tempDir defaults to the OS temp dir.
func NewResolver(decrypter Decrypter, tempDir string) *Resolver {
	return &Resolver{decrypter: decrypter, tempDir: tempDir}
}

// Open resolves ref to readable material. Attachments prefer their searchable
// OCR copy and otherwise decrypt the stored blob into a temp file that is
// removed on Close.
func (r *Resolver) Open(ref Ref) (*Material, error) {
	switch ref.Kind {
	case Media:
		return &Material{Text: ref.Transcript}, nil
	case Project:
		if !fileExists(ref.StoredPath) {
			return nil, fmt.Errorf("%s: stored file missing: %q", ref, ref.StoredPath)
		}
		return &Material{Path: ref.StoredPath}, nil
	case Attachment:
		if ref.OCRPath != "" && fileExists(ref.OCRPath) {
			return &Material{Path: ref.OCRPath}, nil
		}
		if !fileExists(ref.StoredPath) {
			return nil, fmt.Errorf("%s: stored file missing: %q", ref, ref.StoredPath)
		}
		if !ref.Encrypted {
			return &Material{Path: ref.StoredPath}, nil
		}
		return r.decryptToTemp(ref)
	default:
		return nil, fmt.Errorf("unknown document kind %q", ref.Kind)
	}
}

func (r *Resolver) decryptToTemp(ref Ref) (*Material, error) {
	plain, err := DecryptFile(r.decrypter, ref.StoredPath)
	if err != nil {
		return nil, fmt.Errorf("%s: decrypt: %w", ref, err)
	}

	tmp, err := os.CreateTemp(r.tempDir, "dashboard-"+string(ref.Kind)+"-*.pdf")
	if err != nil {
		return nil, err
	}
	name := tmp.Name()
	release := func() {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove decrypted temp file", "path", name, "err", err)
		}
	}

	if _, err := tmp.Write(plain); err != nil {
		tmp.Close()
		release()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		release()
		return nil, err
	}
	return &Material{Path: name, release: release}, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
