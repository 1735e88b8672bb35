package extract

import (
	"context"
	"image"
	"strings"

	"pagemonk/pkg/logger"
)

// UnsupportedFormatText is the fixed marker returned for extensions the
// extractor does not handle.
const UnsupportedFormatText = "Unsupported file format"

// OCREngine recognizes text in a decoded image. Implementations must be safe
// for concurrent use; the extractor creates no shared per-call state.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	Close() error
}

// Extractor turns raw file bytes into text. It is a pure function over the
// input: no state is shared between calls beyond the injected OCR engine.
type Extractor struct {
	ocr    OCREngine
	logger logger.Logger
}

func NewExtractor(ocr OCREngine, log logger.Logger) *Extractor {
	return &Extractor{
		ocr:    ocr,
		logger: log,
	}
}

// Extract dispatches on the file extension. It never panics and never leaks a
// bare error: all outcomes are folded into the tagged Result.
func (e *Extractor) Extract(ctx context.Context, data []byte, ext string) Result {
	switch strings.ToLower(ext) {
	case ".pdf":
		return e.extractPDF(data)
	case ".jpg", ".jpeg", ".png":
		return e.extractImage(ctx, data)
	default:
		e.logger.Warn("Unsupported file extension",
			logger.String("extension", ext),
		)
		return Result{Kind: ResultUnsupported, Reason: UnsupportedFormatText}
	}
}

func (e *Extractor) Close() error {
	if e.ocr != nil {
		return e.ocr.Close()
	}
	return nil
}
