package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pagemonk/internal/models"
	"pagemonk/pkg/logger"
)

// SchemaRepository stores extraction schemas. Delete is soft: rows are never
// removed, listing filters on is_active while Get does not, so a deleted
// schema stays retrievable by direct id.
type SchemaRepository interface {
	Create(ctx context.Context, schema *models.Schema) error
	Get(ctx context.Context, id string) (*models.Schema, error)
	ListActive(ctx context.Context) ([]*models.Schema, error)
	SoftDelete(ctx context.Context, id string) error
}

type schemaRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSchemaRepository(db *sql.DB, log logger.Logger) SchemaRepository {
	return &schemaRepository{db: db, logger: log}
}

func (r *schemaRepository) Create(ctx context.Context, schema *models.Schema) error {
	specJSON, err := json.Marshal(schema.FieldSpec)
	if err != nil {
		return fmt.Errorf("failed to encode field spec: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO schemas (id, name, description, field_spec, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		schema.ID, schema.Name, schema.Description, string(specJSON),
		schema.IsActive, schema.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert schema",
			logger.String("id", schema.ID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to insert schema: %w", err)
	}
	return nil
}

func (r *schemaRepository) Get(ctx context.Context, id string) (*models.Schema, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, field_spec, is_active, created_at
		FROM schemas WHERE id = ?`, id)

	schema, err := scanSchema(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrSchemaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	return schema, nil
}

func (r *schemaRepository) ListActive(ctx context.Context) ([]*models.Schema, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, field_spec, is_active, created_at
		FROM schemas WHERE is_active = 1 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	schemas := make([]*models.Schema, 0)
	for rows.Next() {
		schema, err := scanSchema(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schema: %w", err)
		}
		schemas = append(schemas, schema)
	}
	return schemas, rows.Err()
}

func (r *schemaRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE schemas SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schema: %w", err)
	}
	return requireRow(res, models.ErrSchemaNotFound)
}

func scanSchema(row rowScanner) (*models.Schema, error) {
	var schema models.Schema
	var specJSON string
	if err := row.Scan(
		&schema.ID, &schema.Name, &schema.Description,
		&specJSON, &schema.IsActive, &schema.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(specJSON), &schema.FieldSpec); err != nil {
		return nil, fmt.Errorf("failed to decode stored field spec: %w", err)
	}
	return &schema, nil
}
