package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagemonk/api/handlers"
	"pagemonk/api/middleware"
)

// SetupRoutes registers all endpoints on the engine.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.Use(middleware.CORS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to PageMonk - Document Processing API",
		})
	})

	r.POST("/upload", h.Document.Upload)
	r.POST("/parse/:id", h.Document.Parse)
	r.POST("/extract/:id", h.Document.Extract)
	r.GET("/documents", h.Document.List)
	r.GET("/documents/:id", h.Document.Get)
	r.DELETE("/delete_all_documents", h.Document.DeleteAll)
	r.POST("/structure", h.Document.Structure)

	r.POST("/schemas", h.Schema.Create)
	r.GET("/schemas", h.Schema.List)
	r.GET("/schemas/:id", h.Schema.Get)
	r.DELETE("/schemas/:id", h.Schema.Delete)
}
