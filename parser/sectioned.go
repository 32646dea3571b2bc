package parser

import (
	"regexp"
	"strings"

	"github.com/finparse/payslip-engine/dto"
	"github.com/finparse/payslip-engine/extractor"
	"github.com/finparse/payslip-engine/patterns"
)

// blockKind is the small fixed taxonomy the section-aware parser sorts
// document blocks into.
type blockKind int

const (
	blockOther blockKind = iota
	blockSummary
	blockTaxDetail
	blockFundDetail
	blockContact
)

var pageMarkerRe = regexp.MustCompile(`(?im)^\s*page\s+\d+\s+of\s+\d+\s*$`)

// SectionedParser handles multi-page statements where only some blocks
// carry the pay summary. It extracts line items from summary blocks
// only, so fund ledgers and tax schedules on later pages cannot bleed
// into the result.
type SectionedParser struct {
	lib *patterns.Library
	ext *extractor.Extractor
}

func NewSectioned(lib *patterns.Library, ext *extractor.Extractor) *SectionedParser {
	return &SectionedParser{lib: lib, ext: ext}
}

func (p *SectionedParser) Name() string {
	return "sectioned"
}

// CanHandle requires the document to actually have block structure:
// multiple pages, page markers, or blank-line separated blocks.
func (p *SectionedParser) CanHandle(text dto.RawText) bool {
	if text.IsEmpty() {
		return false
	}
	if len(text.Pages) > 1 {
		return true
	}
	full := text.Full()
	return pageMarkerRe.MatchString(full) || len(splitBlocks(text)) > 1
}

func (p *SectionedParser) Parse(text dto.RawText) *dto.PayslipRecord {
	blocks := splitBlocks(text)

	var summary []string
	for _, b := range blocks {
		if classifyBlock(b) == blockSummary {
			summary = append(summary, b)
		}
	}
	if len(summary) == 0 {
		return nil
	}

	summaryText := strings.Join(summary, "\n")
	earnings, deductions := p.ext.Extract(summaryText)

	// Identity fields may sit on any page; scalar extraction sees the
	// whole document.
	record := &dto.PayslipRecord{
		PersonalDetails: extractPersonalDetails(p.lib, text.Full()),
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

// splitBlocks cuts the document into logical blocks: page boundaries
// first, then form feeds, page markers and blank-line gaps within a
// page.
func splitBlocks(text dto.RawText) []string {
	var blocks []string
	for _, page := range text.Pages {
		page = strings.ReplaceAll(page, "\r\n", "\n")
		for _, chunk := range strings.Split(page, "\f") {
			chunk = pageMarkerRe.ReplaceAllString(chunk, "\f")
			for _, sub := range strings.Split(chunk, "\f") {
				for _, b := range strings.Split(sub, "\n\n\n") {
					if strings.TrimSpace(b) != "" {
						blocks = append(blocks, b)
					}
				}
			}
		}
	}
	return blocks
}

// classifyBlock assigns a block to the taxonomy by keyword signals,
// most specific first.
func classifyBlock(block string) blockKind {
	upper := strings.ToUpper(block)

	switch {
	case strings.Contains(upper, "INCOME TAX DETAILS") ||
		strings.Contains(upper, "TAX CALCULATION") ||
		strings.Contains(upper, "TAX WORKSHEET"):
		return blockTaxDetail
	case strings.Contains(upper, "DSOP FUND DETAILS") ||
		strings.Contains(upper, "FUND STATEMENT") ||
		strings.Contains(upper, "FUND BALANCE"):
		return blockFundDetail
	case strings.Contains(upper, "CONTACT US") ||
		strings.Contains(upper, "HELPDESK") ||
		strings.Contains(upper, "GRIEVANCE"):
		return blockContact
	case strings.Contains(upper, "EARNINGS") ||
		strings.Contains(upper, "DEDUCTIONS") ||
		strings.Contains(upper, "CREDITS") ||
		strings.Contains(upper, "DEBITS") ||
		strings.Contains(upper, "GROSS PAY") ||
		strings.Contains(upper, "NET PAY"):
		return blockSummary
	default:
		return blockOther
	}
}
