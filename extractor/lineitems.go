// Package extractor turns the tabular body of a payslip into itemized
// earnings and deductions, reconciled against any stated totals.
package extractor

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/finparse/payslip-engine/dto"
	"github.com/finparse/payslip-engine/registry"
)

// AmountEpsilon is the tolerance used when comparing currency amounts.
const AmountEpsilon = 0.01

// The six standard codes, always routed to dedicated fields no matter
// which section of the document they were printed in.
var (
	StandardEarnings   = []string{"BPAY", "DA", "MSP"}
	StandardDeductions = []string{"DSOP", "AGIF", "ITAX"}
)

var (
	standardEarningSet   = toSet(StandardEarnings)
	standardDeductionSet = toSet(StandardDeductions)
)

func toSet(codes []string) map[string]bool {
	s := make(map[string]bool, len(codes))
	for _, c := range codes {
		s[c] = true
	}
	return s
}

// labelSynonyms normalizes the long-form labels some layouts print in
// place of the standard abbreviations.
var labelSynonyms = map[string]string{
	"BASIC PAY":             "BPAY",
	"BASIC":                 "BPAY",
	"DEARNESS ALLOWANCE":    "DA",
	"MILITARY SERVICE PAY":  "MSP",
	"MIL SERVICE PAY":       "MSP",
	"DSOP FUND":             "DSOP",
	"AGIF FUND":             "AGIF",
	"ARMY GROUP INSURANCE":  "AGIF",
	"INCOME TAX":            "ITAX",
	"I TAX":                 "ITAX",
	"INC TAX":               "ITAX",
	"HOUSE RENT ALLOWANCE":  "HRA",
	"TRANSPORT ALLOWANCE":   "TPTA",
	"CHILD EDUCATION ALLCE": "CEA",
}

// NormalizeLabel maps a raw item label to its canonical code.
func NormalizeLabel(label string) string {
	norm := registry.Normalize(label)
	norm = strings.Join(strings.Fields(norm), " ")
	if code, ok := labelSynonyms[norm]; ok {
		return code
	}
	return norm
}

// Section header keywords. A line counts as a header when it contains
// one of these and carries no trailing amount of its own.
var (
	earningsHeaders  = []string{"EARNINGS", "CREDITS", "CREDIT", "PAY AND ALLOWANCES"}
	deductionHeaders = []string{"DEDUCTIONS", "DEBITS", "DEBIT", "RECOVERIES"}

	earningsTotalRe  = regexp.MustCompile(`(?i)^\s*(?:gross\s*(?:pay|salary|earnings)|total\s*(?:credits?|earnings|pay))\b[^0-9]*([0-9,]+\.?\d*)\s*$`)
	deductionTotalRe = regexp.MustCompile(`(?i)^\s*total\s*(?:deductions?|debits?|recoveries)\b[^0-9]*([0-9,]+\.?\d*)\s*$`)
	netLineRe        = regexp.MustCompile(`(?i)^\s*net\s`)
	tableHeaderRe    = regexp.MustCompile(`(?i)^\s*(?:description|particulars|item)\b.*\bamount\b`)
)

// ParseAmount parses a currency token like "1,234.56" or "₹1,234".
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for _, sym := range []string{"Rs.", "Rs", "INR", "₹", "$", "£", "€", ",", " "} {
		s = strings.ReplaceAll(s, sym, "")
	}
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Extractor parses line items and classifies them via the abbreviation
// registry.
type Extractor struct {
	registry *registry.AbbreviationRegistry
}

// New returns an extractor bound to the given registry.
func New(reg *registry.AbbreviationRegistry) *Extractor {
	return &Extractor{registry: reg}
}

type region struct {
	lines []string
	hint  dto.AbbreviationType
}

// Extract locates the earnings and deductions regions of the text (or
// falls back to the whole document), parses label/amount rows, routes
// each through the registry and reconciles against stated totals.
func (e *Extractor) Extract(text string) (dto.ExtractionResult, dto.ExtractionResult) {
	earnings := dto.NewExtractionResult()
	deductions := dto.NewExtractionResult()

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	regions := locateRegions(lines)

	for _, sec := range regions {
		for _, line := range sec.lines {
			line = strings.TrimSpace(line)
			if line == "" || tableHeaderRe.MatchString(line) || netLineRe.MatchString(line) {
				continue
			}

			// Stated totals are recorded, never parsed as items.
			if m := earningsTotalRe.FindStringSubmatch(line); m != nil {
				if v, ok := ParseAmount(m[1]); ok {
					earnings.StatedTotal = v
				}
				continue
			}
			if m := deductionTotalRe.FindStringSubmatch(line); m != nil {
				if v, ok := ParseAmount(m[1]); ok {
					deductions.StatedTotal = v
				}
				continue
			}

			item, ok := parseItemLine(line, sec.hint)
			if !ok {
				continue
			}
			e.routeItem(item, &earnings, &deductions)
		}
	}

	reconcile(&earnings, "earnings")
	reconcile(&deductions, "deductions")
	return earnings, deductions
}

// parseItemLine splits a row into label and trailing amount.
// Zero-amount rows are dropped outright.
func parseItemLine(line string, hint dto.AbbreviationType) (dto.LineItem, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return dto.LineItem{}, false
	}

	amount, ok := ParseAmount(fields[len(fields)-1])
	if !ok {
		return dto.LineItem{}, false
	}
	if amount == 0 {
		return dto.LineItem{}, false
	}

	label := strings.Join(fields[:len(fields)-1], " ")
	code := NormalizeLabel(label)
	if code == "" || !containsLetter(code) {
		return dto.LineItem{}, false
	}

	return dto.LineItem{Code: code, Amount: amount, SectionHint: hint}, true
}

func containsLetter(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

// routeItem files one item per the routing rules: standard codes go to
// their fixed category regardless of the section they appeared in,
// registry-known codes to the known-other bucket of their type, and
// unknown codes into the misc bucket of their section.
func (e *Extractor) routeItem(item dto.LineItem, earnings, deductions *dto.ExtractionResult) {
	itemType := e.registry.Classify(item.Code)

	// Negative amounts are noise from the decode layer; the item still
	// counts as a sighting but contributes nothing.
	amount := item.Amount
	if amount < 0 {
		amount = 0
	}

	switch {
	case standardEarningSet[item.Code]:
		if amount > 0 {
			earnings.StandardFields[item.Code] += amount
		}
	case standardDeductionSet[item.Code]:
		if amount > 0 {
			deductions.StandardFields[item.Code] += amount
		}
	case itemType == dto.AbbreviationEarning:
		if amount > 0 {
			earnings.KnownOtherFields[item.Code] += amount
		}
	case itemType == dto.AbbreviationDeduction:
		if amount > 0 {
			deductions.KnownOtherFields[item.Code] += amount
		}
	default:
		e.registry.RecordUnknown(item.Code, amount, item.SectionHint)
		switch item.SectionHint {
		case dto.AbbreviationDeduction:
			deductions.MiscTotal += amount
		default:
			// Undifferentiated documents park unknowns on the
			// earnings side; reconciliation corrects it when a
			// stated total is available.
			earnings.MiscTotal += amount
		}
	}
}

// locateRegions finds the earnings and deductions sections. When neither
// header is present the whole document is one region with no hint.
func locateRegions(lines []string) []region {
	earnIdx, dedIdx := -1, -1
	for i, line := range lines {
		upper := strings.ToUpper(strings.TrimSpace(line))
		if upper == "" {
			continue
		}
		if earnIdx < 0 && isHeaderLine(upper, earningsHeaders) {
			earnIdx = i
			continue
		}
		if dedIdx < 0 && isHeaderLine(upper, deductionHeaders) {
			dedIdx = i
		}
	}

	if earnIdx < 0 && dedIdx < 0 {
		return []region{{lines: lines, hint: dto.AbbreviationUnknown}}
	}

	var regions []region
	if earnIdx >= 0 {
		end := len(lines)
		if dedIdx > earnIdx {
			end = dedIdx
		}
		regions = append(regions, region{lines: lines[earnIdx+1 : end], hint: dto.AbbreviationEarning})
	}
	if dedIdx >= 0 {
		end := len(lines)
		if earnIdx > dedIdx {
			end = earnIdx
		}
		regions = append(regions, region{lines: lines[dedIdx+1 : end], hint: dto.AbbreviationDeduction})
	}
	return regions
}

// isHeaderLine reports whether a line is a section header rather than an
// item row. Header lines carry a keyword and no trailing amount.
func isHeaderLine(upper string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(upper, kw) {
			continue
		}
		fields := strings.Fields(upper)
		if len(fields) == 0 {
			return false
		}
		if _, ok := ParseAmount(fields[len(fields)-1]); ok {
			return false
		}
		return true
	}
	return false
}

// reconcile forces the category invariant: when a nonzero stated total
// is present, misc absorbs the gap between it and the classified sums.
// Misc never goes negative; an over-stated classified sum is logged and
// left unreconciled.
func reconcile(result *dto.ExtractionResult, side string) {
	if result.StatedTotal <= AmountEpsilon {
		return
	}

	classified := result.Sum() - result.MiscTotal
	gap := result.StatedTotal - classified
	if gap < -AmountEpsilon {
		log.Printf("Stated %s total %.2f is below classified sum %.2f; misc clamped to zero", side, result.StatedTotal, classified)
		result.MiscTotal = 0
		return
	}
	if gap < 0 {
		gap = 0
	}
	result.MiscTotal = gap
}
