package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finparse/payslip-engine/dto"
	"github.com/finparse/payslip-engine/extractor"
	"github.com/finparse/payslip-engine/patterns"
	"github.com/finparse/payslip-engine/registry"
)

func newSectionedForTest() *SectionedParser {
	return NewSectioned(patterns.NewLibrary(), extractor.New(registry.New()))
}

var multiPageStatement = dto.NewRawText(
	`Employee Name: John Doe
Pay Slip for June 2024

EARNINGS
BPAY 30000
DA 15000
Gross Pay 45000

DEDUCTIONS
ITAX 8000
Total Deductions 8000`,
	`DSOP FUND DETAILS
OPENING BALANCE 100000
SUBSCRIPTION 5000
CLOSING BALANCE 105000`,
	`CONTACT US
HELPDESK 1800 123 456`,
)

func TestSectionedCanHandle(t *testing.T) {
	p := newSectionedForTest()

	assert.True(t, p.CanHandle(multiPageStatement))
	assert.False(t, p.CanHandle(dto.NewRawText("")))
	// A single short page with no block structure is not this parser's
	// territory.
	assert.False(t, p.CanHandle(dto.NewRawText("BPAY 30000")))
}

func TestSectionedParsesSummaryBlocksOnly(t *testing.T) {
	p := newSectionedForTest()

	record := p.Parse(multiPageStatement)
	require.NotNil(t, record)

	assert.Equal(t, "sectioned", record.ParserName)
	assert.Equal(t, map[string]float64{"BPAY": 30000, "DA": 15000}, record.Earnings.StandardFields)
	assert.Equal(t, map[string]float64{"ITAX": 8000}, record.Deductions.StandardFields)

	// The fund ledger page must not bleed into the result: no
	// OPENING BALANCE or CLOSING BALANCE amounts anywhere.
	assert.Zero(t, record.Earnings.MiscTotal)
	assert.InDelta(t, 45000, record.GrossCredits, extractor.AmountEpsilon)

	// Identity fields still come from the whole document.
	assert.Equal(t, "John Doe", record.PersonalDetails.Name)
	assert.Equal(t, 6, record.PersonalDetails.PeriodMonth)
	assert.Equal(t, 2024, record.PersonalDetails.PeriodYear)
}

func TestSectionedReturnsNilWithoutSummaryBlock(t *testing.T) {
	p := newSectionedForTest()

	record := p.Parse(dto.NewRawText(
		"DSOP FUND DETAILS\nOPENING BALANCE 100000",
		"CONTACT US\nHELPDESK 1800 123 456",
	))
	assert.Nil(t, record)
}

func TestClassifyBlock(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  blockKind
	}{
		{"summary", "EARNINGS\nBPAY 30000", blockSummary},
		{"tax detail", "INCOME TAX DETAILS\nslab one", blockTaxDetail},
		{"fund detail", "DSOP FUND DETAILS\nbalances", blockFundDetail},
		{"contact", "CONTACT US\nphone", blockContact},
		{"other", "miscellaneous footer text", blockOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyBlock(tt.block))
		})
	}
}

func TestSplitBlocksOnPageMarkers(t *testing.T) {
	text := dto.NewRawText("first block\nPage 1 of 2\nsecond block")
	blocks := splitBlocks(text)
	assert.Len(t, blocks, 2)
}
