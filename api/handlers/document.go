package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pagemonk/internal/models"
	"pagemonk/internal/service/document"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/queue"
)

type DocumentHandler struct {
	service document.Service
	queue   queue.Queue
	logger  logger.Logger
}

// StructureRequest carries ad-hoc text for LLM structuring without an
// uploaded document.
type StructureRequest struct {
	Content      string `json:"content" binding:"required"`
	Instructions string `json:"instructions"`
}

func NewDocumentHandler(service document.Service, q queue.Queue, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		queue:   q,
		logger:  log,
	}
}

// Upload stores the file and creates the document row. Any file type is
// accepted here; unsupported formats surface later when parsed.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		handleError(c, h.logger, "Invalid file upload",
			models.NewServiceError(models.KindInvalidInput, "file field is required", err))
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(c.Request.Context(), file, header)
	if err != nil {
		handleError(c, h.logger, "Failed to upload file", err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Parse runs the extract+structure pipeline. With a queue configured the
// work is handed to the worker instead; either way pipeline failures are
// recorded on the document, not returned as HTTP errors.
func (h *DocumentHandler) Parse(c *gin.Context) {
	id := c.Param("id")

	if h.queue != nil {
		if _, err := h.service.Get(c.Request.Context(), id); err != nil {
			handleError(c, h.logger, "Failed to parse document", err)
			return
		}
		if err := h.queue.EnqueueParse(c.Request.Context(), id); err != nil {
			handleError(c, h.logger, "Failed to queue document", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Document queued for processing",
			"status":  models.StatusProcessing,
		})
		return
	}

	doc, err := h.service.Parse(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, "Failed to parse document", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Document processed",
		"status":  doc.Status,
	})
}

// Extract runs schema extraction over a parsed document.
func (h *DocumentHandler) Extract(c *gin.Context) {
	id := c.Param("id")
	schemaID := c.Query("schema_id")
	if schemaID == "" {
		handleError(c, h.logger, "Failed to extract document",
			models.NewServiceError(models.KindInvalidInput, "schema_id query parameter is required", nil))
		return
	}

	extracted, err := h.service.ExtractWithSchema(c.Request.Context(), id, schemaID)
	if err != nil {
		handleError(c, h.logger, "Extraction failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"extracted_data": json.RawMessage(extracted),
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, "Failed to list documents", err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, "Failed to get document", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteAll(c *gin.Context) {
	count, err := h.service.DeleteAll(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, "Failed to delete documents", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Deleted %d documents", count),
	})
}

// Structure runs LLM structuring over caller-supplied text.
func (h *DocumentHandler) Structure(c *gin.Context) {
	var req StructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, "Invalid structure request",
			models.NewServiceError(models.KindInvalidInput, "content field is required", err))
		return
	}

	structured, err := h.service.StructureText(c.Request.Context(), req.Content, req.Instructions)
	if err != nil {
		handleError(c, h.logger, "Structuring failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"structured_content": structured,
	})
}
