package parser

import (
	"regexp"
	"strings"

	"github.com/finparse/payslip-engine/dto"
	"github.com/finparse/payslip-engine/extractor"
	"github.com/finparse/payslip-engine/patterns"
	"github.com/finparse/payslip-engine/registry"
)

// FallbackParser is the permissive last-resort pass. It ignores layout
// entirely and collects isolated "key: number" pairs, keeping only the
// ones the registry can vouch for. The coordinator runs it when every
// strategy failed on a document that carried a recognized layout
// signal, and caps its result at medium confidence.
type FallbackParser struct {
	lib *patterns.Library
	reg *registry.AbbreviationRegistry
}

func NewFallback(lib *patterns.Library, reg *registry.AbbreviationRegistry) *FallbackParser {
	return &FallbackParser{lib: lib, reg: reg}
}

func (p *FallbackParser) Name() string {
	return "fallback"
}

func (p *FallbackParser) CanHandle(text dto.RawText) bool {
	return !text.IsEmpty()
}

// keyValueRe matches a lone labeled amount, e.g. "DSOP: 5000" or
// "Basic Pay - 30,000.00".
var keyValueRe = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z ./]{1,30}?)\s*[:\-]\s*(?:Rs\.?|INR|₹)?\s*([0-9][0-9,]*\.?\d*)\s*$`)

func (p *FallbackParser) Parse(text dto.RawText) *dto.PayslipRecord {
	full := text.Full()
	earnings := dto.NewExtractionResult()
	deductions := dto.NewExtractionResult()

	for _, line := range strings.Split(full, "\n") {
		m := keyValueRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, ok := extractor.ParseAmount(m[2])
		if !ok || amount <= 0 {
			continue
		}

		label := strings.ToUpper(strings.TrimSpace(m[1]))
		switch {
		case strings.HasPrefix(label, "GROSS") || strings.HasPrefix(label, "TOTAL CREDIT"):
			earnings.StatedTotal = amount
			continue
		case strings.HasPrefix(label, "TOTAL DEDUCTION") || strings.HasPrefix(label, "TOTAL DEBIT"):
			deductions.StatedTotal = amount
			continue
		case strings.HasPrefix(label, "NET"):
			continue
		}

		code := extractor.NormalizeLabel(m[1])
		switch p.reg.Classify(code) {
		case dto.AbbreviationEarning:
			earnings.KnownOtherFields[code] += amount
		case dto.AbbreviationDeduction:
			deductions.KnownOtherFields[code] += amount
		}
	}

	// Standard codes picked up as known-other move to their fixed slots.
	promoteStandard(&earnings, extractor.StandardEarnings)
	promoteStandard(&deductions, extractor.StandardDeductions)

	record := &dto.PayslipRecord{
		PersonalDetails: extractPersonalDetails(p.lib, full),
		Earnings:        earnings,
		Deductions:      deductions,
		ParserName:      p.Name(),
	}
	if !minimumViable(record) {
		return nil
	}
	finalizeTotals(record)
	return record
}

func promoteStandard(result *dto.ExtractionResult, codes []string) {
	for _, code := range codes {
		if v, ok := result.KnownOtherFields[code]; ok {
			result.StandardFields[code] = v
			delete(result.KnownOtherFields, code)
		}
	}
}
