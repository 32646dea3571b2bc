// Package patterns implements the ordered, prioritized field pattern
// library used to pull scalar fields (name, identifiers, period,
// location) out of free payslip text.
package patterns

import (
	"regexp"
	"sort"
	"strings"
)

// Preprocess transforms the whole text before a pattern is matched.
type Preprocess func(string) string

// Postprocess transforms the captured value after a match.
type Postprocess func(string) string

// FieldPattern is one extraction rule for a field key. Either Regex or
// Keyword is set. Regex patterns capture the value in group 1; keyword
// patterns take the remainder of the first line containing the keyword,
// after the keyword and any ":"/"-" separator.
type FieldPattern struct {
	Key      string
	Regex    *regexp.Regexp
	Keyword  string
	Priority int
	Pre      []Preprocess
	Post     []Postprocess
}

// Preprocessing steps.

func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Postprocessing steps.

func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

func Uppercase(s string) string {
	return strings.ToUpper(s)
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// StripNonNumeric drops everything except digits and decimal points,
// used for account numbers and other numeric identifiers.
func StripNonNumeric(s string) string {
	return nonNumeric.ReplaceAllString(s, "")
}

// CleanCurrency removes currency symbols, commas and stray spaces so the
// value parses as a plain decimal.
func CleanCurrency(s string) string {
	s = strings.TrimSpace(s)
	for _, sym := range []string{"Rs.", "Rs", "INR", "₹", "$", "£", "€", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	return strings.TrimSpace(s)
}

// apply runs one pattern against the text and returns the post-processed
// value, or "" when the pattern does not produce a usable match.
func (p FieldPattern) apply(text string) string {
	for _, pre := range p.Pre {
		text = pre(text)
	}

	var value string
	switch {
	case p.Regex != nil:
		if m := p.Regex.FindStringSubmatch(text); len(m) > 1 {
			value = m[1]
		}
	case p.Keyword != "":
		value = matchKeywordLine(text, p.Keyword)
	}
	if value == "" {
		return ""
	}

	for _, post := range p.Post {
		value = post(value)
	}
	return value
}

// matchKeywordLine finds the first line containing the keyword
// (case-insensitive) and returns the text after it.
func matchKeywordLine(text, keyword string) string {
	lowerKeyword := strings.ToLower(keyword)
	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(strings.ToLower(line), lowerKeyword)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(keyword):]
		rest = strings.TrimLeft(rest, " \t:-")
		if strings.TrimSpace(rest) != "" {
			return rest
		}
	}
	return ""
}

// Library holds patterns grouped by field key, kept sorted by
// descending priority. Immutable after construction and safe for
// concurrent Extract calls.
type Library struct {
	patterns map[string][]FieldPattern
}

// NewLibrary returns a library preloaded with the default pattern set.
func NewLibrary() *Library {
	l := &Library{patterns: make(map[string][]FieldPattern)}
	for _, p := range defaultPatterns() {
		l.add(p)
	}
	l.sortAll()
	return l
}

func (l *Library) add(p FieldPattern) {
	l.patterns[p.Key] = append(l.patterns[p.Key], p)
}

func (l *Library) sortAll() {
	for key := range l.patterns {
		ps := l.patterns[key]
		sort.SliceStable(ps, func(i, j int) bool {
			return ps[i].Priority > ps[j].Priority
		})
	}
}

// Keys returns the field keys the library knows about.
func (l *Library) Keys() []string {
	keys := make([]string, 0, len(l.patterns))
	for k := range l.patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extract tries all patterns for a key in descending priority order and
// returns the first non-empty post-processed match. A pattern whose
// postprocessing yields an empty string counts as a non-match and the
// next pattern is tried.
func (l *Library) Extract(text, key string) string {
	for _, p := range l.patterns[key] {
		if v := p.apply(text); v != "" {
			return v
		}
	}
	return ""
}
