package parser

import "github.com/finparse/payslip-engine/dto"

// Confidence scoring thresholds. Calibrated against a corpus of
// representative defence and civilian payslips.
const (
	highConfidenceThreshold   = 12
	mediumConfidenceThreshold = 6
)

// Evaluate assigns a confidence level to a completed record. It is the
// single yardstick for every parser, so strategies cannot self-grade
// inconsistently.
func Evaluate(record *dto.PayslipRecord) dto.Confidence {
	if record == nil {
		return dto.ConfidenceLow
	}

	points := 0

	if record.PersonalDetails.Name != "" {
		points += 2
	}
	if record.PersonalDetails.AccountNumber != "" {
		points++
	}
	if record.PersonalDetails.TaxID != "" {
		points++
	}
	if record.PersonalDetails.Location != "" {
		points++
	}
	if record.PersonalDetails.HasValidPeriod() {
		points += 2
	}

	if record.GrossCredits > 0 {
		points += 2
	}
	if record.TotalDebits > 0 {
		points += 2
	}

	if len(record.Earnings.StandardFields) > 0 {
		points += 2
	}
	if len(record.Deductions.StandardFields) > 0 {
		points += 2
	}
	if record.Earnings.ItemCount() >= 3 {
		points++
	}
	if record.Deductions.ItemCount() >= 3 {
		points++
	}

	switch {
	case points >= highConfidenceThreshold:
		return dto.ConfidenceHigh
	case points >= mediumConfidenceThreshold:
		return dto.ConfidenceMedium
	default:
		return dto.ConfidenceLow
	}
}
