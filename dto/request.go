package dto

import (
	"errors"
	"mime/multipart"
	"strings"
)

// ExtractRequest is the incoming extraction request. Callers either
// upload a PDF or send already-decoded text; exactly one is required.
type ExtractRequest struct {
	File     *multipart.FileHeader `form:"file"`
	Text     string                `form:"text"`
	Password string                `form:"password"`
}

// Validate performs basic validation on the request
func (r *ExtractRequest) Validate() error {
	if r.File == nil && strings.TrimSpace(r.Text) == "" {
		return errors.New("either a file upload or a text field is required")
	}
	if r.File != nil && strings.TrimSpace(r.Text) != "" {
		return errors.New("provide a file or text, not both")
	}
	return nil
}

// PromoteRequest reclassifies an unknown abbreviation code.
type PromoteRequest struct {
	Code string `json:"code" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// AbbreviationTypeFromString maps the wire value to the enum.
func AbbreviationTypeFromString(s string) (AbbreviationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "earning":
		return AbbreviationEarning, nil
	case "deduction":
		return AbbreviationDeduction, nil
	case "unknown":
		return AbbreviationUnknown, nil
	default:
		return AbbreviationUnknown, errors.New("type must be one of earning, deduction, unknown")
	}
}
