// Package shared holds small text helpers used by the CLI, web and TUI.
package shared

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Capitalize title-cases s, e.g. for entity kinds and source labels.
func Capitalize(s string) string {
	return cases.Title(language.Und).String(s)
}

// NormalizeLineEndings converts CRLF and lone CR to LF, for transcripts pasted
// from Windows tools.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// TruncateText shortens text to at most maxLen runes, appending "..." when cut.
func TruncateText(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	return string([]rune(text)[:maxLen]) + "..."
}

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9]+`)
	slugValid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify derives a project slug from a display name.
func Slugify(name string) string {
	return strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// ValidSlug reports whether s is already in slug form.
func ValidSlug(s string) bool {
	return slugValid.MatchString(s)
}

var tagRx = regexp.MustCompile(`</?b>`)

// StripHighlight removes the <b> markers search excerpts carry.
func StripHighlight(s string) string {
	return tagRx.ReplaceAllString(s, "")
}

func StringPtr(s string) *string { return &s }

func BoolPtr(b bool) *bool { return &b }
