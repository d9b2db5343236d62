package entities

import (
	"regexp"
	"strings"
	"unicode"
)

// Kind is the entity category.
type Kind string

const (
	Person Kind = "person"
	Org    Kind = "org"
)

// Candidate is one entity occurrence found in text.
type Candidate struct {
	Name string
	Kind Kind
}

// TextClassifier finds entity candidates in free text. Every occurrence is
// returned; deduplication happens in Rebuild.
type TextClassifier interface {
	Classify(text string) []Candidate
}

var (
	personRx = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\b`)
	orgRx    = regexp.MustCompile(`[A-Za-z][A-Za-z&.\-]+(?:\s+[A-Za-z&.\-]+){1,4}`)
)

// AgencyHints mark a phrase as an organization when any appears inside it.
var AgencyHints = []string{
	"sheriff", "police", "department", "office", "prosecutor", "county",
	"state", "city", "board", "court", "division", "bureau", "agency",
	"authority", "commission", "district",
}

const (
	minPersonLen = 5
	minOrgLen    = 6
)

// RegexClassifier is a heuristic classifier: capitalized word runs are people,
// phrases naming an agency or written in capitals are organizations. The same
// words can surface as both kinds.
type RegexClassifier struct {
	hints []string
}

func NewRegexClassifier() *RegexClassifier {
	return &RegexClassifier{hints: AgencyHints}
}

func (c *RegexClassifier) Classify(text string) []Candidate {
	var out []Candidate

	for _, m := range personRx.FindAllStringSubmatch(text, -1) {
		if len(m[1]) < minPersonLen {
			continue
		}
		out = append(out, Candidate{Name: m[1], Kind: Person})
	}

	for _, phrase := range orgRx.FindAllString(text, -1) {
		if len(phrase) < minOrgLen || !c.looksLikeOrg(phrase) {
			continue
		}
		out = append(out, Candidate{Name: strings.TrimSpace(phrase), Kind: Org})
	}

	return out
}

func (c *RegexClassifier) looksLikeOrg(s string) bool {
	lower := strings.ToLower(s)
	for _, h := range c.hints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return isUpper(s)
}

// isUpper reports whether s has at least one cased letter and no lower-case
// ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
