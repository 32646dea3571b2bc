package dto

import (
	"strings"
	"time"
)

// Confidence is the three-level quality score assigned to an extraction
// candidate by the confidence evaluator.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// AbbreviationType classifies a payslip line-item code.
type AbbreviationType int

const (
	AbbreviationUnknown AbbreviationType = iota
	AbbreviationEarning
	AbbreviationDeduction
)

func (t AbbreviationType) String() string {
	switch t {
	case AbbreviationEarning:
		return "earning"
	case AbbreviationDeduction:
		return "deduction"
	default:
		return "unknown"
	}
}

// RawText is the decoded page text of one document. Decoding (PDF text
// extraction, OCR, decryption) happens outside the engine; parsers only
// ever see this.
type RawText struct {
	Pages []string `json:"pages"`
}

// NewRawText builds a RawText from ordered page strings.
func NewRawText(pages ...string) RawText {
	return RawText{Pages: pages}
}

// Full returns all pages joined with a newline between them.
func (r RawText) Full() string {
	return strings.Join(r.Pages, "\n")
}

// IsEmpty reports whether the document contains no usable text.
func (r RawText) IsEmpty() bool {
	for _, p := range r.Pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// LineItem is a single parsed "label amount" row. Transient; line items
// are folded into an ExtractionResult and never stored individually.
type LineItem struct {
	Code        string
	Amount      float64
	SectionHint AbbreviationType
}

// ExtractionResult holds the itemized amounts for one category
// (earnings or deductions).
type ExtractionResult struct {
	// StandardFields holds the fixed standard codes (BPAY/DA/MSP on the
	// earnings side, DSOP/AGIF/ITAX on the deductions side).
	StandardFields map[string]float64 `json:"standard_fields"`
	// KnownOtherFields holds codes the registry classifies into this
	// category but that are not standard codes.
	KnownOtherFields map[string]float64 `json:"known_other_fields"`
	// MiscTotal aggregates unknown codes, adjusted during reconciliation
	// when a stated total is present.
	MiscTotal float64 `json:"misc_total"`
	// StatedTotal is the total printed on the document, zero when the
	// document states none.
	StatedTotal float64 `json:"stated_total"`
}

// NewExtractionResult returns an empty result with allocated maps.
func NewExtractionResult() ExtractionResult {
	return ExtractionResult{
		StandardFields:   make(map[string]float64),
		KnownOtherFields: make(map[string]float64),
	}
}

// ItemCount returns the number of distinct coded fields.
func (r ExtractionResult) ItemCount() int {
	return len(r.StandardFields) + len(r.KnownOtherFields)
}

// Sum returns standard + known-other + misc.
func (r ExtractionResult) Sum() float64 {
	total := r.MiscTotal
	for _, v := range r.StandardFields {
		total += v
	}
	for _, v := range r.KnownOtherFields {
		total += v
	}
	return total
}

// IsEmpty reports whether nothing at all was extracted for the category.
func (r ExtractionResult) IsEmpty() bool {
	return r.ItemCount() == 0 && r.MiscTotal == 0 && r.StatedTotal == 0
}

// PersonalDetails are the scalar identity fields extracted from the
// document header. All strings default to empty, period fields to zero.
type PersonalDetails struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	TaxID         string `json:"tax_id"`
	PeriodMonth   int    `json:"period_month"`
	PeriodYear    int    `json:"period_year"`
	Location      string `json:"location"`
}

// HasValidPeriod reports whether both period fields carry plausible values.
func (p PersonalDetails) HasValidPeriod() bool {
	return p.PeriodMonth >= 1 && p.PeriodMonth <= 12 && p.PeriodYear >= 1900
}

// ScoredCandidate is a record together with the coordinator's verdict
// on it.
type ScoredCandidate struct {
	Record     PayslipRecord `json:"record"`
	Confidence Confidence    `json:"confidence"`
	ParserName string        `json:"parser_name"`
	Elapsed    time.Duration `json:"elapsed"`
}

// PayslipRecord is one candidate structured extraction of a payslip.
type PayslipRecord struct {
	PersonalDetails PersonalDetails  `json:"personal_details"`
	Earnings        ExtractionResult `json:"earnings"`
	Deductions      ExtractionResult `json:"deductions"`
	GrossCredits    float64          `json:"gross_credits"`
	TotalDebits     float64          `json:"total_debits"`
	ParserName      string           `json:"parser_name"`
}
