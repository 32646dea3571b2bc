package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort           string
	TesseractDataPath    string
	MaxFileSize          int64
	AbbreviationSeedFile string
	PatternFile          string
	OCREnabled           bool
}

func LoadConfig() *Config {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	tesseractDataPath := os.Getenv("TESSDATA_PREFIX")
	if tesseractDataPath == "" {
		tesseractDataPath = "/usr/share/tesseract-ocr/5/tessdata"
	}

	ocrEnabled := true
	if v := os.Getenv("OCR_ENABLED"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			ocrEnabled = parsed
		}
	}

	return &Config{
		ServerPort:           serverPort,
		TesseractDataPath:    tesseractDataPath,
		MaxFileSize:          10 * 1024 * 1024, // 10 MB
		AbbreviationSeedFile: os.Getenv("ABBREVIATION_SEED_FILE"),
		PatternFile:          os.Getenv("PATTERN_FILE"),
		OCREnabled:           ocrEnabled,
	}
}
