// Package sanitize turns raw engine output into a single speakable, quoted line.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	hangulFirst = '가'
	hangulLast  = '힣'
)

// DefaultLabels are prompt labels the engine tends to echo back.
var DefaultLabels = []string{"나레이션:", "토끼:", "거북이:", "대사:", "상황:"}

// DefaultInterjection is collapsed to a single occurrence per line.
const DefaultInterjection = "흐흐"

// Sanitizer holds the label and interjection policy. The zero value removes no labels
// and collapses nothing; use New for the story defaults.
type Sanitizer struct {
	Labels       []string
	Interjection string
}

func New() *Sanitizer {
	return &Sanitizer{
		Labels:       DefaultLabels,
		Interjection: DefaultInterjection,
	}
}

// WithSpeakers returns a copy whose labels also cover "<name>:" for each speaker.
func (s *Sanitizer) WithSpeakers(names ...string) *Sanitizer {
	labels := append([]string{}, s.Labels...)
	for _, name := range names {
		label := name + ":"
		if !contains(labels, label) {
			labels = append(labels, label)
		}
	}
	return &Sanitizer{Labels: labels, Interjection: s.Interjection}
}

// Clean is deterministic and has no side effects. The result always ends in . ! or ?
// followed by a closing quote.
func (s *Sanitizer) Clean(raw string) string {
	text := norm.NFC.String(raw)

	text = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '"' || r == '\'' {
			return -1
		}
		return r
	}, text)

	for _, label := range s.Labels {
		if label != "" {
			text = strings.ReplaceAll(text, label, "")
		}
	}

	text = strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return -1
	}, text)

	text = collapse(text, s.Interjection)

	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}

	return `"` + text + `"`
}

// Unquote strips the wrapping quotes Clean adds.
func Unquote(cleaned string) string {
	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, `"`) && strings.HasSuffix(cleaned, `"`) {
		return cleaned[1 : len(cleaned)-1]
	}
	return cleaned
}

// IsDegenerate reports a cleaned line with no letters left in it, which is what an
// all-stripped engine response degrades to.
func IsDegenerate(cleaned string) bool {
	for _, r := range Unquote(cleaned) {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= hangulFirst && r <= hangulLast:
		return true
	}
	switch r {
	case ' ', '.', ',', '!', '?', '~':
		return true
	}
	return false
}

// collapse keeps the first occurrence of token and deletes every later one.
func collapse(text, token string) string {
	if token == "" {
		return text
	}
	i := strings.Index(text, token)
	if i < 0 {
		return text
	}
	head := text[:i+len(token)]
	return head + strings.ReplaceAll(text[i+len(token):], token, "")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
