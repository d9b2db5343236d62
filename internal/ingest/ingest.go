// Package ingest stores new uploads and hands them to the indexer. It is the
// write path used by the CLI "add" commands.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/events"
	"github.com/NewsNowIndy/Dashboard/internal/shared"
)

// Indexer indexes one document within the upload budget.
type Indexer interface {
	IndexOne(ctx context.Context, ref document.Ref) error
}

// Options locates stored uploads.
type Options struct {
	DocumentsDir   string
	AttachmentsDir string
}

// Service records uploads and announces them on the bus.
type Service struct {
	store     *db.Store
	encrypter document.Encrypter
	bus       *events.Bus
	opts      Options
}

// New creates a Service. encrypter may be nil, in which case attachments
// cannot be added.
func New(store *db.Store, encrypter document.Encrypter, bus *events.Bus, opts Options) *Service {
	return &Service{store: store, encrypter: encrypter, bus: bus, opts: opts}
}

// RegisterIndexing subscribes idx to upload and transcript events so every
// new document is indexed synchronously after it is stored. Indexing errors
// are logged by the bus and never fail the upload.
func RegisterIndexing(bus *events.Bus, idx Indexer) {
	events.Subscribe(bus, func(ctx context.Context, e events.DocumentUploaded) error {
		return idx.IndexOne(ctx, e.Ref)
	})
	events.Subscribe(bus, func(ctx context.Context, e events.MediaTranscribed) error {
		return idx.IndexOne(ctx, e.Ref)
	})
}

// AddProject creates a project. An empty slug is derived from name.
func (s *Service) AddProject(ctx context.Context, slug, name string) (db.Project, error) {
	if strings.TrimSpace(name) == "" {
		return db.Project{}, errors.New("project name is required")
	}
	if slug == "" {
		slug = shared.Slugify(name)
	}
	if !shared.ValidSlug(slug) {
		return db.Project{}, fmt.Errorf("invalid project slug %q", slug)
	}
	if _, err := s.store.CreateProject(ctx, slug, name); err != nil {
		return db.Project{}, err
	}
	return s.store.ProjectBySlug(ctx, slug)
}

// AddRequest files a FOIA request, optionally under a project.
func (s *Service) AddRequest(ctx context.Context, projectSlug, reference, agency string) (int64, error) {
	var projectID int64
	if projectSlug != "" {
		p, err := s.store.ProjectBySlug(ctx, projectSlug)
		if err != nil {
			return 0, err
		}
		projectID = p.ID
	}
	return s.store.CreateRequest(ctx, db.Request{ReferenceNumber: reference, Agency: agency, ProjectID: projectID})
}

// AddProjectDocument copies path into content-addressed storage, records it
// under the project and emits DocumentUploaded.
func (s *Service) AddProjectDocument(ctx context.Context, projectSlug, path, title, notes string) (document.Ref, error) {
	if projectSlug != "" {
		if _, err := s.store.ProjectBySlug(ctx, projectSlug); err != nil {
			return document.Ref{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return document.Ref{}, err
	}
	hash := db.HashBytes(data)
	ext := strings.ToLower(filepath.Ext(path))
	stored := filepath.Join(s.opts.DocumentsDir, hash[:2], hash+ext)

	if err := writeOnce(stored, data, 0o644); err != nil {
		return document.Ref{}, fmt.Errorf("store document: %w", err)
	}

	id, err := s.store.InsertProjectDocument(ctx, db.ProjectDocument{
		ProjectSlug: projectSlug,
		Title:       title,
		Filename:    filepath.Base(path),
		StoredPath:  stored,
		MimeType:    DetectMIME(path, data),
		Size:        int64(len(data)),
		Notes:       notes,
	})
	if err != nil {
		return document.Ref{}, err
	}

	return s.announce(ctx, document.Project, id)
}

// AddAttachment encrypts path into attachment storage under requestID and
// emits DocumentUploaded.
func (s *Service) AddAttachment(ctx context.Context, requestID int64, path string) (document.Ref, error) {
	if s.encrypter == nil {
		return document.Ref{}, document.ErrNoKey
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return document.Ref{}, err
	}
	token, err := s.encrypter.Encrypt(data)
	if err != nil {
		return document.Ref{}, fmt.Errorf("encrypt attachment: %w", err)
	}

	stored := filepath.Join(s.opts.AttachmentsDir, db.HashBytes(data)+".enc")
	if err := writeOnce(stored, token, 0o600); err != nil {
		return document.Ref{}, fmt.Errorf("store attachment: %w", err)
	}

	id, err := s.store.InsertAttachment(ctx, db.Attachment{
		RequestID:  requestID,
		Filename:   filepath.Base(path),
		MimeType:   DetectMIME(path, data),
		Size:       int64(len(data)),
		StoredPath: stored,
		Encrypted:  true,
	})
	if err != nil {
		return document.Ref{}, err
	}

	return s.announce(ctx, document.Attachment, id)
}

// AddMedia records a media item with its transcript and emits
// MediaTranscribed. path may be empty when only the transcript is known.
func (s *Service) AddMedia(ctx context.Context, projectSlug, path, title, transcript string) (document.Ref, error) {
	item := db.MediaItem{Title: title, Transcript: shared.NormalizeLineEndings(transcript)}
	if projectSlug != "" {
		p, err := s.store.ProjectBySlug(ctx, projectSlug)
		if err != nil {
			return document.Ref{}, err
		}
		item.ProjectID = p.ID
	}
	if path != "" {
		item.Filename = filepath.Base(path)
		item.StoredPath = path
		item.MimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}

	id, err := s.store.InsertMedia(ctx, item)
	if err != nil {
		return document.Ref{}, err
	}
	ref, err := s.store.GetRef(ctx, document.Media, id)
	if err != nil {
		return document.Ref{}, err
	}
	s.bus.Emit(ctx, events.MediaTranscribed{Ref: ref})
	return ref, nil
}

func (s *Service) announce(ctx context.Context, kind document.Kind, id int64) (document.Ref, error) {
	ref, err := s.store.GetRef(ctx, kind, id)
	if err != nil {
		return document.Ref{}, err
	}
	log.Info("stored upload", "doc", ref.Key(), "file", ref.Filename)
	s.bus.Emit(ctx, events.DocumentUploaded{Ref: ref})
	return ref, nil
}

// DetectMIME guesses a MIME type from the extension, falling back to
// content sniffing.
func DetectMIME(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}

// writeOnce writes data to path unless an identical file already exists.
func writeOnce(path string, data []byte, perm os.FileMode) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload_*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
