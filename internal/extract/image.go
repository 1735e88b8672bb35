package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"

	"pagemonk/pkg/logger"
)

func (e *Extractor) extractImage(ctx context.Context, data []byte) Result {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return failure(fmt.Errorf("failed to decode image: %w", err))
	}

	bounds := img.Bounds()
	img = flattenAlpha(img)

	text, err := e.ocr.Recognize(ctx, img)
	if err != nil {
		return failure(fmt.Errorf("failed to run OCR: %w", err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		e.logger.Info("OCR found no text in image",
			logger.String("format", format),
			logger.Int("width", bounds.Dx()),
			logger.Int("height", bounds.Dy()),
		)
		return empty(fmt.Sprintf(
			"Image processed (%dx%d pixels) but no text was detected. The image may be too low quality or contain no readable text.",
			bounds.Dx(), bounds.Dy(),
		))
	}

	return ok(text)
}

// flattenAlpha composites images carrying an alpha channel onto a white
// canvas. Tesseract treats transparent regions as black otherwise.
func flattenAlpha(img image.Image) image.Image {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64:
		flat := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
		return imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)
	default:
		return img
	}
}
