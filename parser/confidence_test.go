package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finparse/payslip-engine/dto"
)

func fullRecord() *dto.PayslipRecord {
	return &dto.PayslipRecord{
		PersonalDetails: dto.PersonalDetails{
			Name:          "John Doe",
			AccountNumber: "1234567890",
			TaxID:         "ABCDE1234F",
			PeriodMonth:   6,
			PeriodYear:    2024,
			Location:      "Pune",
		},
		Earnings: dto.ExtractionResult{
			StandardFields: map[string]float64{"BPAY": 30000, "DA": 15000, "MSP": 5000},
		},
		Deductions: dto.ExtractionResult{
			StandardFields: map[string]float64{"DSOP": 5000, "AGIF": 1000, "ITAX": 10000},
		},
		GrossCredits: 50000,
		TotalDebits:  16000,
	}
}

func TestEvaluateHighConfidence(t *testing.T) {
	assert.Equal(t, dto.ConfidenceHigh, Evaluate(fullRecord()))
}

func TestEvaluateMediumConfidence(t *testing.T) {
	record := fullRecord()
	record.PersonalDetails = dto.PersonalDetails{}
	record.Deductions.StandardFields = map[string]float64{"ITAX": 10000}

	// Credits, debits, standard codes on both sides: solid but not
	// complete.
	assert.Equal(t, dto.ConfidenceMedium, Evaluate(record))
}

func TestEvaluateLowConfidence(t *testing.T) {
	record := &dto.PayslipRecord{
		Earnings: dto.ExtractionResult{MiscTotal: 12000},
	}
	assert.Equal(t, dto.ConfidenceLow, Evaluate(record))
}

func TestEvaluateNilRecord(t *testing.T) {
	assert.Equal(t, dto.ConfidenceLow, Evaluate(nil))
}

func TestEvaluateInvalidPeriodEarnsNoPoints(t *testing.T) {
	withPeriod := fullRecord()
	withoutPeriod := fullRecord()
	withoutPeriod.PersonalDetails.PeriodMonth = 0
	withoutPeriod.PersonalDetails.PeriodYear = 0

	// Both are high here; the point difference shows up in the raw
	// scoring, verified indirectly by degrading the record further.
	withoutPeriod.PersonalDetails.Name = ""
	withoutPeriod.PersonalDetails.AccountNumber = ""
	withoutPeriod.PersonalDetails.TaxID = ""
	withoutPeriod.PersonalDetails.Location = ""
	withoutPeriod.Deductions.StandardFields = nil
	withoutPeriod.TotalDebits = 0

	assert.Equal(t, dto.ConfidenceHigh, Evaluate(withPeriod))
	assert.Equal(t, dto.ConfidenceLow, Evaluate(withoutPeriod))
}
