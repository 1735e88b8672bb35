package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig controls the local OCR engine.
type TesseractConfig struct {
	Languages   []string
	PageSegMode gosseract.PageSegMode
}

// TesseractEngine runs OCR through a local Tesseract installation. A fresh
// client is created per call; gosseract clients are not goroutine safe.
type TesseractEngine struct {
	config TesseractConfig
}

func NewTesseractEngine(cfg TesseractConfig) *TesseractEngine {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	if cfg.PageSegMode == 0 {
		// Treat the image as a single uniform block of text.
		cfg.PageSegMode = gosseract.PSM_SINGLE_BLOCK
	}
	return &TesseractEngine{config: cfg}
}

func (t *TesseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Join(t.config.Languages, "+")); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(t.config.PageSegMode); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 100}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to get text: %w", err)
	}
	return text, nil
}

func (t *TesseractEngine) Close() error {
	return nil
}
