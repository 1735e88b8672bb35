// Package schema implements CRUD over extraction schemas.
package schema

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pagemonk/internal/fieldspec"
	"pagemonk/internal/models"
	"pagemonk/internal/repository"
	"pagemonk/pkg/logger"
)

type Service interface {
	Create(ctx context.Context, name, description string, spec map[string]any) (*models.Schema, error)
	Get(ctx context.Context, id string) (*models.Schema, error)
	ListActive(ctx context.Context) ([]*models.Schema, error)
	Delete(ctx context.Context, id string) error
}

type schemaService struct {
	schemas repository.SchemaRepository
	logger  logger.Logger
}

func NewService(schemas repository.SchemaRepository, log logger.Logger) Service {
	return &schemaService{schemas: schemas, logger: log}
}

func (s *schemaService) Create(ctx context.Context, name, description string, spec map[string]any) (*models.Schema, error) {
	if name == "" {
		return nil, models.NewServiceError(models.KindInvalidInput, "schema name is required", nil)
	}
	if err := fieldspec.FieldSpec(spec).Validate(); err != nil {
		return nil, models.NewServiceError(models.KindInvalidInput, "invalid field spec", err)
	}

	schema := &models.Schema{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		FieldSpec:   spec,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.schemas.Create(ctx, schema); err != nil {
		return nil, err
	}

	s.logger.Info("Schema created",
		logger.String("id", schema.ID),
		logger.String("name", schema.Name),
	)
	return schema, nil
}

// Get returns the schema regardless of its active flag: soft-deleted schemas
// stay retrievable by direct id.
func (s *schemaService) Get(ctx context.Context, id string) (*models.Schema, error) {
	return s.schemas.Get(ctx, id)
}

func (s *schemaService) ListActive(ctx context.Context) ([]*models.Schema, error) {
	return s.schemas.ListActive(ctx)
}

// Delete flips the active flag; the row is never removed.
func (s *schemaService) Delete(ctx context.Context, id string) error {
	if err := s.schemas.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Schema deleted", logger.String("id", id))
	return nil
}
