package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finparse/payslip-engine/dto"
	"github.com/finparse/payslip-engine/registry"
	"github.com/finparse/payslip-engine/service"
)

type PayslipHandler struct {
	extractionService *service.ExtractionService
	pdfProcessor      service.PDFProcessor
	registry          *registry.AbbreviationRegistry
}

func NewPayslipHandler(extractionService *service.ExtractionService, pdfProcessor service.PDFProcessor, reg *registry.AbbreviationRegistry) *PayslipHandler {
	return &PayslipHandler{
		extractionService: extractionService,
		pdfProcessor:      pdfProcessor,
		registry:          reg,
	}
}

// Extract handles POST /payslips/extract. The caller uploads a PDF or
// sends pre-decoded text.
func (h *PayslipHandler) Extract(c *gin.Context) {
	var request dto.ExtractRequest
	if err := c.ShouldBind(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse request", err)
		return
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	var text dto.RawText
	if request.File != nil {
		file, err := request.File.Open()
		if err != nil {
			h.sendError(c, http.StatusBadRequest, "Failed to open uploaded file", err)
			return
		}
		defer file.Close()

		pdfData, err := io.ReadAll(file)
		if err != nil {
			h.sendError(c, http.StatusBadRequest, "Failed to read uploaded file", err)
			return
		}

		text, err = h.pdfProcessor.ExtractPages(pdfData, request.Password)
		if err != nil {
			h.sendError(c, http.StatusUnprocessableEntity, "Failed to decode PDF", err)
			return
		}
	} else {
		text = dto.NewRawText(request.Text)
	}

	candidate, cached, err := h.extractionService.Extract(text)
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		h.sendError(c, http.StatusBadRequest, "Document contains no text", err)
		return
	case errors.Is(err, service.ErrNoResult):
		h.sendError(c, http.StatusUnprocessableEntity, "Could not read this document", err)
		return
	case err != nil:
		h.sendError(c, http.StatusInternalServerError, "Extraction failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.ExtractResponse{
		DocumentID: uuid.NewString(),
		Record:     candidate.Record,
		Confidence: candidate.Confidence.String(),
		ParserName: candidate.ParserName,
		Cached:     cached,
		ElapsedMs:  candidate.Elapsed.Milliseconds(),
	})
}

// Parsers handles GET /payslips/parsers.
func (h *PayslipHandler) Parsers(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ParsersResponse{
		Parsers: h.extractionService.ParserNames(),
	})
}

// ClearCache handles DELETE /payslips/cache.
func (h *PayslipHandler) ClearCache(c *gin.Context) {
	h.extractionService.ClearCache()
	c.Status(http.StatusNoContent)
}

// PromoteAbbreviation handles POST /abbreviations/promote. Promoting a
// code also clears the cache so affected documents re-extract.
func (h *PayslipHandler) PromoteAbbreviation(c *gin.Context) {
	var request dto.PromoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse request", err)
		return
	}
	if strings.TrimSpace(request.Code) == "" {
		h.sendError(c, http.StatusBadRequest, "Code is required", nil)
		return
	}

	abbrType, err := dto.AbbreviationTypeFromString(request.Type)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	h.registry.Promote(request.Code, abbrType)
	h.extractionService.ClearCache()
	c.Status(http.StatusNoContent)
}

// AbbreviationStats handles GET /abbreviations/unknown.
func (h *PayslipHandler) AbbreviationStats(c *gin.Context) {
	c.JSON(http.StatusOK, dto.AbbreviationStatsResponse{
		Unknown: h.registry.UnknownStats(),
	})
}

func (h *PayslipHandler) sendError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		log.Printf("%s: %v", message, err)
	}
	c.JSON(status, dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
