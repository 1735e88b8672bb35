// Package app wires configuration into the service graph shared by the
// server and worker binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"pagemonk/config"
	"pagemonk/internal/extract"
	"pagemonk/internal/llm"
	"pagemonk/internal/pipeline"
	"pagemonk/internal/repository"
	"pagemonk/internal/service/document"
	"pagemonk/internal/service/schema"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/storage"
)

// App holds the assembled services plus the resources they own.
type App struct {
	DocumentService document.Service
	SchemaService   schema.Service

	db  *sql.DB
	ocr extract.OCREngine
	llm *llm.OllamaClient
}

// Build constructs the full service graph from config.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	db, err := repository.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := storage.NewStorage(cfg.Storage, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	ocr, err := buildOCREngine(ctx, cfg.OCR)
	if err != nil {
		db.Close()
		return nil, err
	}

	chatClient := llm.NewOllamaClient(cfg.LLM)

	docs := repository.NewDocumentRepository(db, log)
	schemas := repository.NewSchemaRepository(db, log)

	extractor := extract.NewExtractor(ocr, log)
	structurer := pipeline.NewStructurer(chatClient, log)
	schemaExt := pipeline.NewSchemaExtractor(chatClient, log)

	docService := document.NewService(docs, schemas, extractor, structurer, schemaExt, store, log,
		&document.ServiceConfig{
			MaxFileSize:    cfg.Server.MaxFileSize,
			ProcessTimeout: cfg.Server.ProcessTimeout,
		})
	schemaService := schema.NewService(schemas, log)

	return &App{
		DocumentService: docService,
		SchemaService:   schemaService,
		db:              db,
		ocr:             ocr,
		llm:             chatClient,
	}, nil
}

func buildOCREngine(ctx context.Context, cfg config.OCRConfig) (extract.OCREngine, error) {
	switch cfg.Engine {
	case config.EngineTesseract, "":
		return extract.NewTesseractEngine(extract.TesseractConfig{
			Languages: cfg.Languages,
		}), nil
	case config.EngineTextract:
		return extract.NewTextractEngine(ctx, extract.TextractConfig{
			Region:    cfg.Textract.Region,
			AccessKey: cfg.Textract.AccessKey,
			SecretKey: cfg.Textract.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.Engine)
	}
}

// Close releases database, OCR and LLM resources.
func (a *App) Close() error {
	a.ocr.Close()
	a.llm.Close()
	return a.db.Close()
}
