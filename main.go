package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/finparse/payslip-engine/client"
	"github.com/finparse/payslip-engine/config"
	"github.com/finparse/payslip-engine/handler"
	"github.com/finparse/payslip-engine/patterns"
	"github.com/finparse/payslip-engine/registry"
	"github.com/finparse/payslip-engine/service"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	// Abbreviation registry, optionally extended from a seed file
	reg := registry.New()
	if cfg.AbbreviationSeedFile != "" {
		if err := reg.LoadSeedFile(cfg.AbbreviationSeedFile); err != nil {
			log.Fatalf("Failed to load abbreviation seed file: %v", err)
		}
	}

	// Field pattern library, optionally extended from a pattern file
	lib := patterns.NewLibrary()
	if cfg.PatternFile != "" {
		if err := lib.LoadFile(cfg.PatternFile); err != nil {
			log.Fatalf("Failed to load pattern file: %v", err)
		}
	}

	// OCR client for scanned PDFs
	var ocr service.OCRClient
	if cfg.OCREnabled {
		tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
		defer tesseractClient.Close()
		ocr = tesseractClient
	}

	// PDF processor and extraction service
	pdfProcessor := service.NewPDFProcessor(ocr)
	extractionService := service.NewExtractionService(reg, lib, service.LogTelemetry{})

	// Handler layer
	payslipHandler := handler.NewPayslipHandler(extractionService, pdfProcessor, reg)

	// Setup Gin router
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Payslip Extraction Engine",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		payslips := api.Group("/payslips")
		{
			payslips.POST("/extract", payslipHandler.Extract)
			payslips.GET("/parsers", payslipHandler.Parsers)
			payslips.DELETE("/cache", payslipHandler.ClearCache)
		}
		abbreviations := api.Group("/abbreviations")
		{
			abbreviations.POST("/promote", payslipHandler.PromoteAbbreviation)
			abbreviations.GET("/unknown", payslipHandler.AbbreviationStats)
		}
	}

	// Start server
	log.Printf("Starting Payslip Extraction Engine on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
