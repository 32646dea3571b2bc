package patterns

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field keys known to the default library.
const (
	KeyName          = "name"
	KeyAccountNumber = "account_number"
	KeyTaxID         = "tax_id"
	KeyMonth         = "month"
	KeyYear          = "year"
	KeyLocation      = "location"
	KeyGrossPay      = "gross_pay"
	KeyNetPay        = "net_pay"
)

// defaultPatterns is the built-in rule set. Higher priority wins; a
// lower-priority pattern is only consulted when everything above it
// failed to produce a value.
func defaultPatterns() []FieldPattern {
	return []FieldPattern{
		// Name: explicit labels first, honorific prefixes as fallback.
		{
			Key:      KeyName,
			Regex:    regexp.MustCompile(`(?i)(?:employee\s*)?name\s*[:\-]\s*([A-Za-z][A-Za-z .]+)`),
			Priority: 30,
			Pre:      []Preprocess{NormalizeNewlines},
			Post:     []Postprocess{TrimSpace, cleanNameValue},
		},
		{
			Key:      KeyName,
			Regex:    regexp.MustCompile(`(?m)(?i)^\s*(?:MR|MRS|MS|SHRI|SMT|LT|CAPT|MAJ|COL)\.?\s+([A-Z][A-Z .]{2,50})\s*$`),
			Priority: 20,
			Pre:      []Preprocess{NormalizeNewlines},
			Post:     []Postprocess{TrimSpace, cleanNameValue},
		},

		// Account number: labeled forms, then masked forms.
		{
			Key:      KeyAccountNumber,
			Regex:    regexp.MustCompile(`(?i)(?:account\s*no|a/c\s*no|acc?\s*no|account\s*number)\.?\s*[:\-]?\s*([0-9][0-9 \-]{7,20})`),
			Priority: 30,
			Pre:      []Preprocess{NormalizeNewlines},
			Post:     []Postprocess{TrimSpace, StripNonNumeric},
		},
		{
			Key:      KeyAccountNumber,
			Regex:    regexp.MustCompile(`(?i)\b[X*]{4,}([0-9]{3,6})\b`),
			Priority: 20,
			Post:     []Postprocess{TrimSpace, StripNonNumeric},
		},

		// Tax id: labeled PAN first, bare PAN shape second.
		{
			Key:      KeyTaxID,
			Regex:    regexp.MustCompile(`(?i)PAN\s*(?:no\.?|number)?\s*[:\-]?\s*([A-Za-z]{5}[0-9]{4}[A-Za-z])`),
			Priority: 30,
			Post:     []Postprocess{TrimSpace, Uppercase},
		},
		{
			Key:      KeyTaxID,
			Regex:    regexp.MustCompile(`\b([A-Z]{5}[0-9]{4}[A-Z])\b`),
			Priority: 20,
			Post:     []Postprocess{TrimSpace, Uppercase},
		},

		// Period month.
		{
			Key:      KeyMonth,
			Regex:    regexp.MustCompile(`(?i)(?:statement\s+of\s+account\s+for|pay\s*slip\s+for(?:\s+the\s+month\s+of)?|for\s+the\s+month\s+of|salary\s+for)\s+([A-Za-z]{3,9})`),
			Priority: 30,
			Pre:      []Preprocess{NormalizeNewlines},
			Post:     []Postprocess{TrimSpace, monthNameValue},
		},
		{
			Key:      KeyMonth,
			Regex:    regexp.MustCompile(`\b(\d{1,2})/\d{4}\b`),
			Priority: 20,
			Post:     []Postprocess{TrimSpace, monthNumberValue},
		},
		{
			Key:      KeyMonth,
			Regex:    regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\b`),
			Priority: 10,
			Post:     []Postprocess{TrimSpace, monthNameValue},
		},

		// Period year.
		{
			Key:      KeyYear,
			Regex:    regexp.MustCompile(`\b\d{1,2}/(\d{4})\b`),
			Priority: 30,
			Post:     []Postprocess{TrimSpace},
		},
		{
			Key:      KeyYear,
			Regex:    regexp.MustCompile(`(?i)(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)[\s\-,]+(\d{4})`),
			Priority: 20,
			Post:     []Postprocess{TrimSpace},
		},
		{
			Key:      KeyYear,
			Regex:    regexp.MustCompile(`\b(20\d{2})\b`),
			Priority: 10,
			Post:     []Postprocess{TrimSpace},
		},

		// Location.
		{
			Key:      KeyLocation,
			Regex:    regexp.MustCompile(`(?i)(?:location|place|station)\s*[:\-]\s*([A-Za-z][A-Za-z ]+)`),
			Priority: 30,
			Pre:      []Preprocess{NormalizeNewlines},
			Post:     []Postprocess{TrimSpace},
		},

		// Stated amounts, used by the permissive fallback pass.
		{
			Key:      KeyGrossPay,
			Regex:    regexp.MustCompile(`(?i)(?:gross\s*(?:pay|salary|earnings)|total\s*credits?)\s*[:\-]?\s*(?:Rs\.?|INR|₹)?\s*([0-9,]+\.?\d*)`),
			Priority: 30,
			Pre:      []Preprocess{NormalizeNewlines},
			Post:     []Postprocess{CleanCurrency},
		},
		{
			Key:      KeyNetPay,
			Regex:    regexp.MustCompile(`(?i)net\s*(?:pay|salary|amount|remittance)\s*[:\-]?\s*(?:Rs\.?|INR|₹)?\s*([0-9,]+\.?\d*)`),
			Priority: 30,
			Pre:      []Preprocess{NormalizeNewlines},
			Post:     []Postprocess{CleanCurrency},
		},
	}
}

// monthNames maps lowercase month names and abbreviations to 1-12.
var monthNames = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5,
	"june": 6, "july": 7, "august": 8, "september": 9, "october": 10,
	"november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7,
	"aug": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
}

// MonthNumber converts a month name, abbreviation or numeric string to
// 1-12, or 0 when it is not a month.
func MonthNumber(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, ok := monthNames[s]; ok {
		return n
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return n
	}
	return 0
}

// monthNameValue rejects captures that are not actually month names, so
// the library falls through to the next pattern.
func monthNameValue(s string) string {
	if MonthNumber(s) == 0 {
		return ""
	}
	return strconv.Itoa(MonthNumber(s))
}

func monthNumberValue(s string) string {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 12 {
		return ""
	}
	return strconv.Itoa(n)
}

// cleanNameValue strips trailing non-name noise the OCR layer tends to
// glue onto the same line.
func cleanNameValue(s string) string {
	stopWords := map[string]bool{
		"account": true, "acc": true, "bank": true, "branch": true,
		"no": true, "salary": true, "amount": true, "pan": true,
	}
	var kept []string
	for _, w := range strings.Fields(s) {
		if stopWords[strings.ToLower(strings.Trim(w, ".:"))] {
			break
		}
		kept = append(kept, w)
		if len(kept) == 4 {
			break
		}
	}
	return strings.Join(kept, " ")
}

// patternFile is the YAML overlay format for deployment-local patterns.
type patternFile struct {
	Patterns []struct {
		Key      string   `yaml:"key"`
		Regex    string   `yaml:"regex"`
		Keyword  string   `yaml:"keyword"`
		Priority int      `yaml:"priority"`
		Post     []string `yaml:"post"`
	} `yaml:"patterns"`
}

var postStepsByName = map[string]Postprocess{
	"trim":              TrimSpace,
	"upper":             Uppercase,
	"strip_non_numeric": StripNonNumeric,
	"clean_currency":    CleanCurrency,
}

// LoadFile merges extra patterns from a YAML file. Call before handing
// the library to parsers; Extract itself takes no locks.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read pattern file: %w", err)
	}

	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("failed to parse pattern file: %w", err)
	}

	for _, raw := range pf.Patterns {
		if raw.Key == "" || (raw.Regex == "" && raw.Keyword == "") {
			return fmt.Errorf("pattern file entry needs a key and a regex or keyword")
		}
		p := FieldPattern{
			Key:      raw.Key,
			Keyword:  raw.Keyword,
			Priority: raw.Priority,
			Pre:      []Preprocess{NormalizeNewlines},
			Post:     []Postprocess{TrimSpace},
		}
		if raw.Regex != "" {
			re, err := regexp.Compile(raw.Regex)
			if err != nil {
				return fmt.Errorf("invalid regex for key %s: %w", raw.Key, err)
			}
			p.Regex = re
		}
		for _, name := range raw.Post {
			step, ok := postStepsByName[name]
			if !ok {
				return fmt.Errorf("unknown postprocessing step %q for key %s", name, raw.Key)
			}
			p.Post = append(p.Post, step)
		}
		l.add(p)
	}
	l.sortAll()
	return nil
}
