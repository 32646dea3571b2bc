package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ExtractResponse is the final response structure
type ExtractResponse struct {
	DocumentID string        `json:"document_id"`
	Record     PayslipRecord `json:"record"`
	Confidence string        `json:"confidence"`
	ParserName string        `json:"parser_name"`
	Cached     bool          `json:"cached"`
	ElapsedMs  int64         `json:"elapsed_ms"`
}

// ParsersResponse lists the parser strategies available for diagnostics.
type ParsersResponse struct {
	Parsers []string `json:"parsers"`
}

// UnknownCodeStat is one unknown abbreviation with its observation data,
// used by correction tooling to rank promotion candidates.
type UnknownCodeStat struct {
	Code          string `json:"code"`
	ObservedCount int    `json:"observed_count"`
	EarningsSide  int    `json:"earnings_side"`
	DeductionSide int    `json:"deduction_side"`
}

// AbbreviationStatsResponse is the unknown-code snapshot.
type AbbreviationStatsResponse struct {
	Unknown []UnknownCodeStat `json:"unknown"`
}
