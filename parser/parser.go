// Package parser holds the interchangeable layout parsing strategies
// and the confidence evaluator that judges their output.
package parser

import (
	"strconv"

	"github.com/finparse/payslip-engine/dto"
	"github.com/finparse/payslip-engine/patterns"
)

// LayoutParser is one parsing strategy. Parse returns nil when the text
// does not yield a minimum viable record; that is a signal to try the
// next strategy, not an error.
type LayoutParser interface {
	Name() string
	CanHandle(text dto.RawText) bool
	Parse(text dto.RawText) *dto.PayslipRecord
}

// extractPersonalDetails runs the pattern library over the text for
// every scalar field of the record header.
func extractPersonalDetails(lib *patterns.Library, text string) dto.PersonalDetails {
	details := dto.PersonalDetails{
		Name:          lib.Extract(text, patterns.KeyName),
		AccountNumber: lib.Extract(text, patterns.KeyAccountNumber),
		TaxID:         lib.Extract(text, patterns.KeyTaxID),
		Location:      lib.Extract(text, patterns.KeyLocation),
	}
	if m, err := strconv.Atoi(lib.Extract(text, patterns.KeyMonth)); err == nil {
		details.PeriodMonth = m
	}
	if y, err := strconv.Atoi(lib.Extract(text, patterns.KeyYear)); err == nil {
		details.PeriodYear = y
	}
	return details
}

// minimumViable reports whether the record carries enough substance to
// hand to the coordinator: at least one non-empty category.
func minimumViable(record *dto.PayslipRecord) bool {
	return !record.Earnings.IsEmpty() || !record.Deductions.IsEmpty()
}

// finalizeTotals fills the headline figures from the extraction
// results, preferring the document's own stated totals.
func finalizeTotals(record *dto.PayslipRecord) {
	record.GrossCredits = record.Earnings.StatedTotal
	if record.GrossCredits == 0 {
		record.GrossCredits = record.Earnings.Sum()
	}
	record.TotalDebits = record.Deductions.StatedTotal
	if record.TotalDebits == 0 {
		record.TotalDebits = record.Deductions.Sum()
	}
}
