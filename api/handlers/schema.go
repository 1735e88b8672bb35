package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagemonk/internal/models"
	"pagemonk/internal/service/schema"
	"pagemonk/pkg/logger"
)

type SchemaHandler struct {
	service schema.Service
	logger  logger.Logger
}

// CreateSchemaRequest mirrors the JSON body of POST /schemas.
type CreateSchemaRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	FieldSpec   map[string]any `json:"schema_definition" binding:"required"`
}

func NewSchemaHandler(service schema.Service, log logger.Logger) *SchemaHandler {
	return &SchemaHandler{
		service: service,
		logger:  log,
	}
}

func (h *SchemaHandler) Create(c *gin.Context) {
	var req CreateSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, "Invalid schema request",
			models.NewServiceError(models.KindInvalidInput, "name and schema_definition fields are required", err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), req.Name, req.Description, req.FieldSpec)
	if err != nil {
		handleError(c, h.logger, "Failed to create schema", err)
		return
	}

	c.JSON(http.StatusOK, created)
}

func (h *SchemaHandler) List(c *gin.Context) {
	schemas, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, "Failed to list schemas", err)
		return
	}
	c.JSON(http.StatusOK, schemas)
}

func (h *SchemaHandler) Get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, h.logger, "Failed to get schema", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SchemaHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, h.logger, "Failed to delete schema", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Schema deleted",
	})
}
