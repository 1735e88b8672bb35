package document

import (
	"context"
	"mime/multipart"

	"pagemonk/internal/models"
)

// Service orchestrates the document pipeline: upload, the two-stage parse
// (extract then structure), and on-demand schema extraction. It is the only
// writer of document rows.
type Service interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.Document, error)
	Parse(ctx context.Context, id string) (*models.Document, error)
	ExtractWithSchema(ctx context.Context, documentID, schemaID string) (string, error)
	StructureText(ctx context.Context, content, instructions string) (string, error)
	Get(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	DeleteAll(ctx context.Context) (int64, error)
}
