package parser

import (
	"regexp"
	"strings"

	"github.com/finparse/payslip-engine/dto"
	"github.com/finparse/payslip-engine/extractor"
	"github.com/finparse/payslip-engine/patterns"
)

// PCDAParser is tuned to the rigid statement-of-account layout issued
// by the Principal Controller of Defence Accounts: a fixed header, then
// a two-column table with credits on the left and debits on the right.
type PCDAParser struct {
	lib *patterns.Library
	ext *extractor.Extractor
}

func NewPCDA(lib *patterns.Library, ext *extractor.Extractor) *PCDAParser {
	return &PCDAParser{lib: lib, ext: ext}
}

func (p *PCDAParser) Name() string {
	return "pcda"
}

var pcdaSignals = []string{
	"PRINCIPAL CONTROLLER OF DEFENCE ACCOUNTS",
	"PCDA",
	"CDA(O)",
	"DEFENCE PAY",
}

// HasSignals reports whether the text looks like a PCDA statement. The
// coordinator also uses this to decide whether the permissive fallback
// pass is worth running after a strict-parse failure.
func HasSignals(text dto.RawText) bool {
	upper := strings.ToUpper(text.Full())
	for _, s := range pcdaSignals {
		if strings.Contains(upper, s) {
			return true
		}
	}
	if strings.Contains(upper, "STATEMENT OF ACCOUNT") &&
		(strings.Contains(upper, "DSOP") || strings.Contains(upper, "AGIF") || strings.Contains(upper, "MSP")) {
		return true
	}
	return false
}

func (p *PCDAParser) CanHandle(text dto.RawText) bool {
	return HasSignals(text)
}

// twoColumnRe matches one row of the credit/debit table:
// "BPAY 30000.00 DSOP 5000.00".
var twoColumnRe = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z ./]*?)\s+([0-9][0-9,]*\.?\d*)\s+([A-Za-z][A-Za-z ./]*?)\s+([0-9][0-9,]*\.?\d*)\s*$`)

// Parse reads the two-column table and rebuilds it as sectioned
// single-column text, then reuses the line-item extractor for
// classification and reconciliation. Strictness is the point: fewer
// than two table rows means this is not the layout we think it is, and
// the coordinator should move on.
func (p *PCDAParser) Parse(text dto.RawText) *dto.PayslipRecord {
	full := text.Full()

	var creditLines, debitLines []string
	rows := 0
	for _, line := range strings.Split(full, "\n") {
		m := twoColumnRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		creditLines = append(creditLines, m[1]+" "+m[2])
		debitLines = append(debitLines, m[3]+" "+m[4])
		if !isTotalLabel(m[1]) && !isTotalLabel(m[3]) {
			rows++
		}
	}
	if rows < 2 {
		return nil
	}

	var b strings.Builder
	b.WriteString("EARNINGS\n")
	b.WriteString(strings.Join(creditLines, "\n"))
	b.WriteString("\nDEDUCTIONS\n")
	b.WriteString(strings.Join(debitLines, "\n"))

	earnings, deductions := p.ext.Extract(b.String())
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

var totalLabelRe = regexp.MustCompile(`(?i)^(?:gross|total|net)\b`)

func isTotalLabel(label string) bool {
	return totalLabelRe.MatchString(strings.TrimSpace(label))
}
