package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"pagemonk/pkg/logger"
)

// ScannedPDFText is returned when a PDF parses but no page yields embedded
// text, which usually means a scanned document. There is no image-OCR
// fallback for PDFs; callers treat this as a terminal advisory outcome.
const ScannedPDFText = "This appears to be a scanned PDF. Please use an image format for OCR processing."

func (e *Extractor) extractPDF(data []byte) Result {
	reader := bytes.NewReader(data)

	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return failure(fmt.Errorf("failed to open PDF: %w", err))
	}

	numPages := pdfReader.NumPage()
	pages := make([]string, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return failure(fmt.Errorf("failed to get text from page %d: %w", i, err))
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	combined := strings.TrimSpace(strings.Join(pages, "\n"))
	if combined == "" {
		e.logger.Info("PDF has no extractable text",
			logger.Int("pages", numPages),
		)
		return empty(ScannedPDFText)
	}

	return ok(combined)
}
