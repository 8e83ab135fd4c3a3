package util

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePlain = "text/plain"
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// below this many characters a PDF text layer is treated as missing and OCR kicks in
const minTextLayerChars = 100

// DetectMime resolves the document type from the declared content type, falling back to the extension.
func DetectMime(filename, declared string) string {
	declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	switch declared {
	case MimePlain, MimePDF, MimeDOCX:
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt", ".md":
		return MimePlain
	}
	return declared
}

// ExtractText pulls plain text out of an uploaded document.
func ExtractText(mime string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch mime {
	case MimePlain:
		text = string(data)
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX:
		text, err = extractDocxText(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", mime)
	}
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text extracted from document")
	}
	return text, nil
}

// swapped in tests
var (
	pdfTextLayer = extractPDFText
	pdfOCR       = extractPDFWithOCR
)

// extractPDF prefers the text layer and OCRs scans. A short text layer is still better than
// nothing when OCR is unavailable.
func extractPDF(data []byte) (string, error) {
	layer, err := pdfTextLayer(data)
	if err != nil {
		log.Printf("PDF text layer unreadable, falling back to OCR: %v", err)
		layer = ""
	}
	if len(strings.TrimSpace(layer)) >= minTextLayerChars {
		return layer, nil
	}

	text, ocrErr := pdfOCR(data)
	if ocrErr == nil {
		return text, nil
	}
	if strings.TrimSpace(layer) != "" {
		log.Printf("PDF OCR failed, keeping the %d char text layer: %v", len(strings.TrimSpace(layer)), ocrErr)
		return layer, nil
	}
	return "", ocrErr
}

func extractPDFText(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("PDF page %d: %v", i, err)
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}

func extractPDFWithOCR(data []byte) (string, error) {
	tmpFile, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmpFile, bytes.NewReader(data)); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	return ExtractPDFOCR(tmpPath)
}

// ExtractPDFOCR renders every PDF page to an image and runs Tesseract over it.
func ExtractPDFOCR(path string) (string, error) {
	if err := checkTesseract(); err != nil {
		return "", fmt.Errorf("tesseract check failed: %w", err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	log.Printf("OCR: total pages %d", doc.NumPage())

	var fullText bytes.Buffer
	var lastErr error

	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := ocrPage(doc, n)
		if err != nil {
			lastErr = err
			log.Println(lastErr)
			continue
		}
		if len(pageText) > 0 {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())

	if len(result) == 0 {
		if lastErr != nil {
			return "", fmt.Errorf("failed to extract text via OCR: %w", lastErr)
		}
		return "", fmt.Errorf("no text extracted from PDF (PDF might be empty or images are unreadable)")
	}

	log.Printf("OCR: extracted %d chars", len(result))
	return result, nil
}

func ocrPage(doc *fitz.Document, n int) (string, error) {
	img, err := doc.Image(n)
	if err != nil {
		return "", fmt.Errorf("page %d: failed to extract image: %w", n+1, err)
	}

	tmpFile, err := os.CreateTemp("", "page-*.png")
	if err != nil {
		return "", fmt.Errorf("page %d: failed to create temp file: %w", n+1, err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := savePNG(tmpPath, img); err != nil {
		return "", fmt.Errorf("page %d: failed to save PNG: %w", n+1, err)
	}

	cmd := exec.Command("tesseract", tmpPath, "stdout", "-l", "eng")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("page %d: tesseract error: %w, output: %s", n+1, err, string(out))
	}

	return strings.TrimSpace(string(out)), nil
}

func checkTesseract() error {
	cmd := exec.Command("tesseract", "-v")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("tesseract not found or not executable: %w\nOutput: %s", err, string(out))
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}

	return nil
}

// CleanJSON strips markdown fences LLMs like to wrap JSON answers in.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
