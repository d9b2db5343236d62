// Package document models the three kinds of source material that feed the
// search index and resolves each of them to readable content.
package document

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind discriminates which source table a document id refers to.
type Kind string

const (
	Project    Kind = "project"
	Attachment Kind = "attachment"
	Media      Kind = "media"
)

// Kinds lists every source kind in index order.
var Kinds = []Kind{Project, Attachment, Media}

// ParseKind maps a stored discriminator back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Project, Attachment, Media:
		return k, nil
	default:
		return "", fmt.Errorf("unknown document source %q", s)
	}
}

// Ref identifies a single document in one of the source tables together with
// everything needed to locate its bytes.
type Ref struct {
	Kind        Kind
	ID          int64
	Title       string
	Filename    string
	MimeType    string
	StoredPath  string
	OCRPath     string // searchable copy (attachments)
	Encrypted   bool
	Transcript  string // media only
	ProjectSlug string
}

// Key renders the ref as "source:id", the form used for distinct counting.
func (r Ref) Key() string {
	return string(r.Kind) + ":" + strconv.FormatInt(r.ID, 10)
}

func (r Ref) String() string {
	return r.Key()
}

// DisplayTitle returns the index title for the document.
func (r Ref) DisplayTitle() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	if f := strings.TrimSpace(r.Filename); f != "" {
		return f
	}
	switch r.Kind {
	case Attachment:
		return "Attachment " + strconv.FormatInt(r.ID, 10)
	case Media:
		return "Media " + strconv.FormatInt(r.ID, 10)
	default:
		return "Untitled"
	}
}

// Indexable reports whether the document belongs in the full-text index.
// Files qualify when the MIME type or the filename/stored path marks them as
// PDF. Media qualifies when it carries a transcript.
func (r Ref) Indexable() bool {
	if r.Kind == Media {
		return strings.TrimSpace(r.Transcript) != ""
	}
	return IsPDF(r.MimeType, r.Filename, r.StoredPath, r.OCRPath)
}

// IsPDF applies the eligibility filter: a MIME type starting with
// application/pdf or any of the given names ending in .pdf (case-insensitive).
func IsPDF(mimeType string, names ...string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "application/pdf") {
		return true
	}
	for _, n := range names {
		if strings.EqualFold(filepath.Ext(strings.TrimSpace(n)), ".pdf") {
			return true
		}
	}
	return false
}
