package parser

import (
	"strings"

	"github.com/finparse/payslip-engine/dto"
	"github.com/finparse/payslip-engine/extractor"
	"github.com/finparse/payslip-engine/patterns"
)

// GenericParser applies the pattern library and the line-item extractor
// to the whole document. It is the strategy of last resort in the trial
// order and accepts any non-empty text.
type GenericParser struct {
	lib *patterns.Library
	ext *extractor.Extractor
}

func NewGeneric(lib *patterns.Library, ext *extractor.Extractor) *GenericParser {
	return &GenericParser{lib: lib, ext: ext}
}

func (p *GenericParser) Name() string {
	return "generic"
}

func (p *GenericParser) CanHandle(text dto.RawText) bool {
	return !text.IsEmpty()
}

func (p *GenericParser) Parse(text dto.RawText) *dto.PayslipRecord {
	full := text.Full()
	if strings.TrimSpace(full) == "" {
		return nil
	}

	earnings, deductions := p.ext.Extract(full)
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
