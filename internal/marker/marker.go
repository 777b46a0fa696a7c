package marker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Classification is the eligibility verdict for an item title.
type Classification int

const (
	// NotReady means the title carries neither marker; the item is skipped.
	NotReady Classification = iota
	// Ready means the title carries the ready marker as a standalone token.
	Ready
	// AlreadyExported means the title carries the exported marker instead of
	// the ready marker; the item was finished in a previous run.
	AlreadyExported
)

func (c Classification) String() string {
	switch c {
	case Ready:
		return "ready"
	case AlreadyExported:
		return "already_exported"
	default:
		return "not_ready"
	}
}

// Matcher classifies titles against a ready and an exported marker and
// computes post-export renames. Markers match case-insensitively, and only
// when they appear as a distinct token: an occurrence immediately preceded or
// followed by a letter or digit does not count.
type Matcher struct {
	ready    string
	exported string
	readyRe  *regexp.Regexp
	exportRe *regexp.Regexp
}

// New builds a Matcher for the given markers.
func New(ready, exported string) (*Matcher, error) {
	ready = strings.TrimSpace(ready)
	exported = strings.TrimSpace(exported)
	if ready == "" || exported == "" {
		return nil, errors.New("both markers must be non-empty")
	}
	if strings.EqualFold(ready, exported) {
		return nil, errors.New("markers must differ")
	}
	return &Matcher{
		ready:    ready,
		exported: exported,
		readyRe:  compileMarker(ready),
		exportRe: compileMarker(exported),
	}, nil
}

// compileMarker matches every case-insensitive occurrence of the literal
// marker. RE2 has no lookaround, so token-boundary checks happen on the
// match indexes afterwards.
func compileMarker(marker string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(marker))
}

// Classify reports how the title gates the item.
func (m *Matcher) Classify(title string) Classification {
	switch {
	case m.contains(m.readyRe, title):
		return Ready
	case m.contains(m.exportRe, title):
		return AlreadyExported
	default:
		return NotReady
	}
}

// ExportedTitle returns the title with every standalone ready-marker
// occurrence replaced by the exported marker. Occurrences embedded in longer
// tokens are left untouched. If nothing matches, the title is returned
// unchanged.
func (m *Matcher) ExportedTitle(title string) string {
	spans := m.boundarySpans(m.readyRe, title)
	if len(spans) == 0 {
		return title
	}
	var out strings.Builder
	out.Grow(len(title) + len(spans)*len(m.exported))
	last := 0
	for _, span := range spans {
		out.WriteString(title[last:span[0]])
		out.WriteString(m.exported)
		last = span[1]
	}
	out.WriteString(title[last:])
	return out.String()
}

// ReadyMarker returns the configured ready marker.
func (m *Matcher) ReadyMarker() string { return m.ready }

// ExportedMarker returns the configured exported marker.
func (m *Matcher) ExportedMarker() string { return m.exported }

func (m *Matcher) contains(re *regexp.Regexp, title string) bool {
	return len(m.boundarySpans(re, title)) > 0
}

// boundarySpans returns the byte ranges of marker occurrences that stand
// alone as tokens.
func (m *Matcher) boundarySpans(re *regexp.Regexp, title string) [][2]int {
	matches := re.FindAllStringIndex(title, -1)
	if len(matches) == 0 {
		return nil
	}
	spans := make([][2]int, 0, len(matches))
	for _, match := range matches {
		if isolated(title, match[0], match[1]) {
			spans = append(spans, [2]int{match[0], match[1]})
		}
	}
	return spans
}

func isolated(s string, start, end int) bool {
	if start > 0 {
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(before) || unicode.IsDigit(before) {
			return false
		}
	}
	if end < len(s) {
		after, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(after) || unicode.IsDigit(after) {
			return false
		}
	}
	return true
}

// FromConfig is a convenience constructor that surfaces marker problems with
// their config keys.
func FromConfig(ready, exported string) (*Matcher, error) {
	matcher, err := New(ready, exported)
	if err != nil {
		return nil, fmt.Errorf("markers.ready/markers.exported: %w", err)
	}
	return matcher, nil
}
