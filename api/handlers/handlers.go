package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagemonk/internal/models"
	"pagemonk/internal/service/document"
	"pagemonk/internal/service/schema"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/queue"
)

type Handlers struct {
	Document *DocumentHandler
	Schema   *SchemaHandler
}

// NewHandlers wires the HTTP handlers. q may be nil, in which case parsing
// runs synchronously on the request path.
func NewHandlers(
	documentService document.Service,
	schemaService schema.Service,
	q queue.Queue,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(documentService, q, log),
		Schema:   NewSchemaHandler(schemaService, log),
	}
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

// statusForKind maps service error kinds onto HTTP status codes.
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindInvalidState, models.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func handleError(c *gin.Context, log logger.Logger, message string, err error) {
	status := http.StatusInternalServerError
	if kind := models.KindOf(err); kind != "" {
		status = statusForKind(kind)
	}

	log.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(status, response)
}
