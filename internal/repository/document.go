package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pagemonk/internal/models"
	"pagemonk/pkg/logger"
)

// DocumentRepository is the single writer surface over the documents table.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	SetStatus(ctx context.Context, id string, status models.ProcessingStatus) error
	SaveParseResult(ctx context.Context, doc *models.Document) error
	SaveExtractedFields(ctx context.Context, id, fields string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type documentRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewDocumentRepository(db *sql.DB, log logger.Logger) DocumentRepository {
	return &documentRepository{db: db, logger: log}
}

const documentColumns = `id, filename, file_size, file_type, raw_text, markdown,
	extracted_fields, status, error, error_kind, uploaded_at, updated_at`

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.FileSize, doc.FileType,
		doc.RawText, doc.Markdown, doc.ExtractedFields,
		string(doc.Status), doc.Error, string(doc.ErrorKind),
		doc.UploadedAt, doc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert document",
			logger.String("id", doc.ID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *documentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (r *documentRepository) List(ctx context.Context) ([]*models.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepository) SetStatus(ctx context.Context, id string, status models.ProcessingStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return requireRow(res, models.ErrDocumentNotFound)
}

// SaveParseResult persists the outcome of one pipeline run: raw text,
// markdown, status and error fields in a single write.
func (r *documentRepository) SaveParseResult(ctx context.Context, doc *models.Document) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET raw_text = ?, markdown = ?, status = ?, error = ?, error_kind = ?, updated_at = ?
		WHERE id = ?`,
		doc.RawText, doc.Markdown, string(doc.Status),
		doc.Error, string(doc.ErrorKind), time.Now().UTC(), doc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save parse result: %w", err)
	}
	return requireRow(res, models.ErrDocumentNotFound)
}

func (r *documentRepository) SaveExtractedFields(ctx context.Context, id, fields string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET extracted_fields = ?, updated_at = ? WHERE id = ?`,
		fields, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to save extracted fields: %w", err)
	}
	return requireRow(res, models.ErrDocumentNotFound)
}

func (r *documentRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted documents: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var status, errorKind string
	if err := row.Scan(
		&doc.ID, &doc.Filename, &doc.FileSize, &doc.FileType,
		&doc.RawText, &doc.Markdown, &doc.ExtractedFields,
		&status, &doc.Error, &errorKind,
		&doc.UploadedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	doc.Status = models.ProcessingStatus(status)
	doc.ErrorKind = models.ErrorKind(errorKind)
	return &doc, nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
