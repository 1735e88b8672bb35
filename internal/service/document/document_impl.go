package document

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"pagemonk/internal/extract"
	"pagemonk/internal/fieldspec"
	"pagemonk/internal/models"
	"pagemonk/internal/pipeline"
	"pagemonk/internal/repository"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/storage"
)

type ServiceConfig struct {
	MaxFileSize    int64
	ProcessTimeout time.Duration
}

type documentService struct {
	docs       repository.DocumentRepository
	schemas    repository.SchemaRepository
	extractor  *extract.Extractor
	structurer *pipeline.Structurer
	schemaExt  *pipeline.SchemaExtractor
	storage    storage.Storage
	logger     logger.Logger
	config     *ServiceConfig

	// parseGroup collapses concurrent parse requests for one document id
	// into a single pipeline run; duplicates share its outcome.
	parseGroup singleflight.Group
}

func NewService(
	docs repository.DocumentRepository,
	schemas repository.SchemaRepository,
	extractor *extract.Extractor,
	structurer *pipeline.Structurer,
	schemaExt *pipeline.SchemaExtractor,
	store storage.Storage,
	log logger.Logger,
	cfg *ServiceConfig,
) Service {
	if cfg == nil {
		cfg = &ServiceConfig{
			MaxFileSize:    50 * 1024 * 1024, // 50MB
			ProcessTimeout: 5 * time.Minute,
		}
	}

	return &documentService{
		docs:       docs,
		schemas:    schemas,
		extractor:  extractor,
		structurer: structurer,
		schemaExt:  schemaExt,
		storage:    store,
		logger:     log,
		config:     cfg,
	}
}

// Upload stores the file bytes and creates the document row in "uploaded"
// state. Any extension is accepted here; unsupported formats surface as an
// advisory result at parse time.
func (s *documentService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.Document, error) {
	s.logger.Info("Starting file upload",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)

	if header.Size > s.config.MaxFileSize {
		return nil, models.NewServiceError(models.KindInvalidInput,
			fmt.Sprintf("file size exceeds maximum limit of %d bytes", s.config.MaxFileSize), nil)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:         uuid.New().String(),
		Filename:   header.Filename,
		FileSize:   header.Size,
		FileType:   filepath.Ext(header.Filename),
		Status:     models.StatusUploaded,
		UploadedAt: now,
		UpdatedAt:  now,
	}

	if _, err := s.storage.Store(ctx, file, fileKey(doc)); err != nil {
		s.logger.Error("Failed to store file",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Document uploaded",
		logger.String("id", doc.ID),
		logger.String("filename", doc.Filename),
	)
	return doc, nil
}

// Parse runs the extract and structure stages for one document. Pipeline
// failures do not propagate as errors: they are persisted on the row as a
// failed status with a typed error, and the updated document is returned.
// Re-parsing a terminal document re-enters processing; the last run wins.
func (s *documentService) Parse(ctx context.Context, id string) (*models.Document, error) {
	v, err, shared := s.parseGroup.Do(id, func() (any, error) {
		runCtx, cancel := context.WithTimeout(ctx, s.config.ProcessTimeout)
		defer cancel()
		return s.runParse(runCtx, id)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Info("Parse request joined in-flight run",
			logger.String("id", id),
		)
	}
	return v.(*models.Document), nil
}

func (s *documentService) runParse(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.docs.SetStatus(ctx, id, models.StatusProcessing); err != nil {
		return nil, err
	}
	doc.Status = models.StatusProcessing

	data, err := s.readFile(ctx, doc)
	if err != nil {
		return s.failParse(ctx, doc, models.KindExtractionError,
			fmt.Sprintf("failed to read stored file: %v", err))
	}

	result := s.extractor.Extract(ctx, data, doc.FileType)
	if result.Kind == extract.ResultError {
		return s.failParse(ctx, doc, models.KindExtractionError,
			fmt.Sprintf("text extraction failed: %v", result.Err))
	}

	// Empty and unsupported outcomes are advisory, not failures: the
	// advisory text flows through structuring like any other content.
	doc.RawText = result.Content()

	markdown, err := s.structurer.Structure(ctx, doc.RawText, "")
	if err != nil {
		return s.failParse(ctx, doc, models.KindStructuringError, err.Error())
	}

	doc.Markdown = markdown
	doc.Status = models.StatusCompleted
	doc.Error = ""
	doc.ErrorKind = ""
	if err := s.docs.SaveParseResult(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Document processing completed",
		logger.String("id", doc.ID),
		logger.String("extraction", string(result.Kind)),
	)
	return doc, nil
}

func (s *documentService) failParse(ctx context.Context, doc *models.Document, kind models.ErrorKind, detail string) (*models.Document, error) {
	s.logger.Error("Document processing failed",
		logger.String("id", doc.ID),
		logger.String("kind", string(kind)),
		logger.String("detail", detail),
	)

	doc.Status = models.StatusFailed
	doc.Error = detail
	doc.ErrorKind = kind
	doc.Markdown = ""
	if err := s.docs.SaveParseResult(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ExtractWithSchema runs the on-demand schema extraction stage. It requires
// raw text from a prior parse and never alters the document status.
func (s *documentService) ExtractWithSchema(ctx context.Context, documentID, schemaID string) (string, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		return "", err
	}
	schema, err := s.schemas.Get(ctx, schemaID)
	if err != nil {
		return "", err
	}
	if doc.RawText == "" {
		return "", models.ErrNotProcessed
	}

	spec := fieldspec.FieldSpec(schema.FieldSpec)
	if err := spec.Validate(); err != nil {
		return "", models.NewServiceError(models.KindInvalidInput, "stored field spec is invalid", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.config.ProcessTimeout)
	defer cancel()

	extracted, err := s.schemaExt.Extract(runCtx, doc.RawText, spec)
	if err != nil {
		return "", models.NewServiceError(models.KindSchemaExtractionError, "schema extraction failed", err)
	}

	if err := s.docs.SaveExtractedFields(ctx, documentID, extracted); err != nil {
		return "", err
	}

	s.logger.Info("Schema extraction completed",
		logger.String("documentId", documentID),
		logger.String("schemaId", schemaID),
	)
	return extracted, nil
}

// StructureText structures caller-supplied text without touching storage.
func (s *documentService) StructureText(ctx context.Context, content, instructions string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.ProcessTimeout)
	defer cancel()

	structured, err := s.structurer.Structure(runCtx, content, instructions)
	if err != nil {
		return "", models.NewServiceError(models.KindStructuringError, "structuring failed", err)
	}
	return structured, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.docs.Get(ctx, id)
}

func (s *documentService) List(ctx context.Context) ([]*models.Document, error) {
	return s.docs.List(ctx)
}

func (s *documentService) DeleteAll(ctx context.Context) (int64, error) {
	count, err := s.docs.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	// Sweep the stored upload files so the wipe leaves no orphans behind.
	// The rows are already gone, so a sweep failure is logged, not returned.
	if err := s.storage.CleanupBefore(ctx, time.Now().UTC()); err != nil {
		s.logger.Warn("Failed to remove stored files", logger.Error(err))
	}
	s.logger.Info("Deleted all documents", logger.Int64("count", count))
	return count, nil
}

func (s *documentService) readFile(ctx context.Context, doc *models.Document) ([]byte, error) {
	reader, err := s.storage.Get(ctx, fileKey(doc))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// fileKey derives the storage key for a document's uploaded bytes. The id
// prefix keeps identically named uploads from clobbering each other.
func fileKey(doc *models.Document) string {
	return doc.ID + doc.FileType
}
