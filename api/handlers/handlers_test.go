package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemonk/api/handlers"
	"pagemonk/api/routes"
	"pagemonk/internal/extract"
	"pagemonk/internal/models"
	"pagemonk/internal/pipeline"
	"pagemonk/internal/repository"
	"pagemonk/internal/service/document"
	"pagemonk/internal/service/schema"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/storage/local"
)

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f.text, f.err
}

func (f *fakeOCR) Close() error { return nil }

type fakeModel struct {
	fn func(prompt string) (string, error)
}

func (f *fakeModel) Chat(ctx context.Context, prompt string) (string, error) {
	return f.fn(prompt)
}

type testServer struct {
	router *gin.Engine
	ocr    *fakeOCR
	model  *fakeModel
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger()
	store, err := local.NewStorage(local.Config{Directory: t.TempDir()}, log)
	require.NoError(t, err)

	ocr := &fakeOCR{text: "INVOICE 42\nTotal: 12.50"}
	model := &fakeModel{fn: func(prompt string) (string, error) {
		return "# Invoice\n\nTotal: 12.50", nil
	}}

	docs := repository.NewDocumentRepository(db, log)
	schemas := repository.NewSchemaRepository(db, log)

	docService := document.NewService(
		docs, schemas,
		extract.NewExtractor(ocr, log),
		pipeline.NewStructurer(model, log),
		pipeline.NewSchemaExtractor(model, log),
		store, log,
		&document.ServiceConfig{MaxFileSize: 1 << 20, ProcessTimeout: time.Minute},
	)
	schemaService := schema.NewService(schemas, log)

	h := handlers.NewHandlers(docService, schemaService, nil, log)
	router := gin.New()
	routes.SetupRoutes(router, h)

	return &testServer{router: router, ocr: ocr, model: model}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, filename string, data []byte) string {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.NotEmpty(t, doc.ID)
	return doc.ID
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.White)
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to PageMonk")
}

func TestUploadParseGetFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.upload(t, "scan.png", testPNG(t))

	w := s.do(t, http.MethodPost, "/parse/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var parseBody struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parseBody))
	assert.Equal(t, "Document processed", parseBody.Message)
	assert.Equal(t, "completed", parseBody.Status)

	w = s.do(t, http.MethodGet, "/documents/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "INVOICE 42\nTotal: 12.50", doc.RawText)
	assert.Equal(t, "# Invoice\n\nTotal: 12.50", doc.Markdown)

	w = s.do(t, http.MethodGet, "/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var docs []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)
}

func TestParseFailureStillReturns200(t *testing.T) {
	s := newTestServer(t)
	s.model.fn = func(prompt string) (string, error) {
		return "", errors.New("model unavailable")
	}
	id := s.upload(t, "scan.png", testPNG(t))

	w := s.do(t, http.MethodPost, "/parse/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var parseBody struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parseBody))
	assert.Equal(t, "failed", parseBody.Status)

	w = s.do(t, http.MethodGet, "/documents/"+id, nil)
	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, models.KindStructuringError, doc.ErrorKind)
	assert.Contains(t, doc.Error, "model unavailable")
}

func TestParseUnknownDocument(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/parse/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUnknownDocument(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/documents/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExtractFlow(t *testing.T) {
	s := newTestServer(t)
	id := s.upload(t, "scan.png", testPNG(t))

	w := s.do(t, http.MethodPost, "/parse/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/schemas", map[string]any{
		"name":              "invoice",
		"description":       "invoice fields",
		"schema_definition": map[string]any{"vendor": "string", "total": "number"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created models.Schema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	s.model.fn = func(prompt string) (string, error) {
		return `{"vendor": "Acme", "total": 12.5}`, nil
	}

	w = s.do(t, http.MethodPost, "/extract/"+id+"?schema_id="+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var extractBody struct {
		ExtractedData map[string]any `json:"extracted_data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &extractBody))
	assert.Equal(t, "Acme", extractBody.ExtractedData["vendor"])
	assert.Equal(t, 12.5, extractBody.ExtractedData["total"])
}

func TestExtractRequiresSchemaID(t *testing.T) {
	s := newTestServer(t)
	id := s.upload(t, "scan.png", testPNG(t))

	w := s.do(t, http.MethodPost, "/extract/"+id, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractBeforeParse(t *testing.T) {
	s := newTestServer(t)
	id := s.upload(t, "scan.png", testPNG(t))

	w := s.do(t, http.MethodPost, "/schemas", map[string]any{
		"name":              "invoice",
		"schema_definition": map[string]any{"vendor": "string"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created models.Schema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = s.do(t, http.MethodPost, "/extract/"+id+"?schema_id="+created.ID, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchemaLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/schemas", map[string]any{
		"name":              "receipt",
		"schema_definition": map[string]any{"vendor": "string"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created models.Schema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = s.do(t, http.MethodGet, "/schemas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var schemas []models.Schema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schemas))
	assert.Len(t, schemas, 1)

	w = s.do(t, http.MethodDelete, "/schemas/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/schemas", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schemas))
	assert.Empty(t, schemas)

	// Soft-deleted schemas stay reachable by id.
	w = s.do(t, http.MethodGet, "/schemas/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Schema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.IsActive)
}

func TestSchemaResponseRoundTrips(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/schemas", map[string]any{
		"name":              "receipt",
		"schema_definition": map[string]any{"vendor": "string"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// The field spec keeps its wire name in responses, so a fetched schema
	// object is valid input for another create.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw, "schema_definition")
	assert.NotContains(t, raw, "field_spec")

	w = s.do(t, http.MethodPost, "/schemas", raw)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created models.Schema
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, map[string]any{"vendor": "string"}, created.FieldSpec)
}

func TestCreateSchemaValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/schemas", map[string]any{
		"name": "broken",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/schemas", map[string]any{
		"name":              "broken",
		"schema_definition": map[string]any{"total": "float"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStructureEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.model.fn = func(prompt string) (string, error) {
		return "# Structured", nil
	}

	w := s.do(t, http.MethodPost, "/structure", map[string]any{
		"content": "raw notes",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		StructuredContent string `json:"structured_content"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "# Structured", body.StructuredContent)

	w = s.do(t, http.MethodPost, "/structure", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAllDocuments(t *testing.T) {
	s := newTestServer(t)
	s.upload(t, "a.png", testPNG(t))
	s.upload(t, "b.png", testPNG(t))

	w := s.do(t, http.MethodDelete, "/delete_all_documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Deleted 2 documents")

	w = s.do(t, http.MethodGet, "/documents", nil)
	var docs []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Empty(t, docs)
}
