package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractConfig carries the AWS credentials for the remote OCR engine.
type TextractConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

// TextractEngine is an OCREngine backed by AWS Textract, for deployments
// without a local Tesseract installation.
type TextractEngine struct {
	client *textract.Client
}

func NewTextractEngine(ctx context.Context, cfg TextractConfig) (*TextractEngine, error) {
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &TextractEngine{client: textract.NewFromConfig(awsCfg)}, nil
}

func (t *TextractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	result, err := t.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: buf.Bytes()},
	})
	if err != nil {
		return "", fmt.Errorf("failed to detect document text: %w", err)
	}

	lines := make([]string, 0, len(result.Blocks))
	for _, block := range result.Blocks {
		if block.BlockType == types.BlockTypeLine && block.Text != nil {
			lines = append(lines, *block.Text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (t *TextractEngine) Close() error {
	return nil
}
