package service

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/finparse/payslip-engine/dto"
)

// OCRClient turns an image file into text. It backs the scanned-PDF
// fallback; the engine itself never performs OCR.
type OCRClient interface {
	ExtractTextAndQuality(filePath string) (string, float64, error)
}

// PDFProcessor decodes a PDF into per-page text. This is the whole of
// the engine's document-decoding boundary: everything downstream works
// on dto.RawText.
type PDFProcessor interface {
	ExtractPages(pdfData []byte, password string) (dto.RawText, error)
}

type pdfProcessor struct {
	ocr OCRClient
}

// NewPDFProcessor builds the default processor. The OCR client is
// optional; without it scanned PDFs simply fail with an error.
func NewPDFProcessor(ocr OCRClient) PDFProcessor {
	return &pdfProcessor{ocr: ocr}
}

func (p *pdfProcessor) ExtractPages(pdfData []byte, password string) (dto.RawText, error) {
	if password != "" {
		decrypted, err := decryptPDF(pdfData, password)
		if err != nil {
			return dto.RawText{}, fmt.Errorf("failed to decrypt pdf: %w", err)
		}
		pdfData = decrypted
	}

	pages, err := extractEmbeddedText(pdfData)
	if err != nil {
		return dto.RawText{}, err
	}

	text := dto.NewRawText(pages...)
	if len(strings.TrimSpace(text.Full())) >= 20 {
		return text, nil
	}

	// Minimal embedded text usually means a scanned document.
	log.Println("PDF has minimal embedded text, attempting image-based OCR")
	if p.ocr == nil {
		return dto.RawText{}, fmt.Errorf("pdf has no embedded text and no OCR client is configured")
	}
	return p.ocrPages(pdfData)
}

func decryptPDF(pdfData []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(pdfData), &out, conf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func extractEmbeddedText(pdfData []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		var pageText bytes.Buffer
		rows, _ := page.GetTextByRow()
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					pageText.WriteString(" ")
				}
				pageText.WriteString(word.S)
			}
			pageText.WriteString("\n")
		}
		pages = append(pages, pageText.String())
	}
	return pages, nil
}

// ocrPages extracts the page images from the PDF and runs each through
// the OCR client.
func (p *pdfProcessor) ocrPages(pdfData []byte) (dto.RawText, error) {
	images, err := extractImages(pdfData)
	if err != nil {
		return dto.RawText{}, fmt.Errorf("failed to extract images: %w", err)
	}
	if len(images) == 0 {
		return dto.RawText{}, fmt.Errorf("pdf contains no extractable images")
	}

	var pages []string
	for _, img := range images {
		tempImg, err := saveImageToTempFile(img)
		if err != nil {
			log.Printf("Failed to save temporary image for OCR: %v", err)
			continue
		}

		pageText, _, err := p.ocr.ExtractTextAndQuality(tempImg)
		os.Remove(tempImg)
		if err != nil {
			log.Printf("OCR failed for a page: %v", err)
			continue
		}
		pages = append(pages, pageText)
	}

	if len(pages) == 0 {
		return dto.RawText{}, fmt.Errorf("OCR produced no text")
	}
	return dto.NewRawText(pages...), nil
}

func extractImages(pdfData []byte) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	var images []image.Image
	files, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		imgPath := filepath.Join(tempDir, file.Name())
		imgFile, err := os.Open(imgPath)
		if err != nil {
			continue
		}

		img, _, err := image.Decode(imgFile)
		imgFile.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}

	return images, nil
}

// saveImageToTempFile saves an image.Image to a temporary PNG file.
func saveImageToTempFile(img image.Image) (string, error) {
	tempFile, err := os.CreateTemp("", "ocr-img-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer tempFile.Close()

	if err := png.Encode(tempFile, img); err != nil {
		return "", fmt.Errorf("failed to encode image to PNG: %w", err)
	}

	return tempFile.Name(), nil
}
