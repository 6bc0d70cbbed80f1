package processor

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFProcessor extracts plain text from locally mirrored course PDFs.
type PDFProcessor struct{}

// NewPDFProcessor creates a new PDF processor
func NewPDFProcessor() *PDFProcessor {
	return &PDFProcessor{}
}

// ExtractText extracts text from a PDF file
func (p *PDFProcessor) ExtractText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract plain text: %w", err)
	}

	_, err = buf.ReadFrom(b)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}

	return buf.String(), nil
}

// ExtractDocumentText extracts text and normalizes it for the chunker, which
// treats newlines as paragraph boundaries.
func (p *PDFProcessor) ExtractDocumentText(filePath string) (string, error) {
	text, err := p.ExtractText(filePath)
	if err != nil {
		return "", err
	}
	return normalizeWhitespace(text), nil
}

var (
	spaceRe = regexp.MustCompile(`[ \t]+`)
	blankRe = regexp.MustCompile(`\n\s*\n+`)
	pageRe  = regexp.MustCompile(`\f`)
)

// normalizeWhitespace collapses runs of spaces and blank lines while keeping
// single newlines intact as paragraph separators.
func normalizeWhitespace(text string) string {
	text = pageRe.ReplaceAllString(text, "\n")
	text = spaceRe.ReplaceAllString(text, " ")
	text = blankRe.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
