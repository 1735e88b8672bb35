package worker

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemonk/internal/models"
	"pagemonk/pkg/logger"
	"pagemonk/pkg/queue"
)

type stubDocService struct {
	parseErr error
	parsed   []string
}

func (s *stubDocService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.Document, error) {
	return nil, nil
}

func (s *stubDocService) Parse(ctx context.Context, id string) (*models.Document, error) {
	s.parsed = append(s.parsed, id)
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	return &models.Document{ID: id, Status: models.StatusCompleted}, nil
}

func (s *stubDocService) ExtractWithSchema(ctx context.Context, documentID, schemaID string) (string, error) {
	return "", nil
}

func (s *stubDocService) StructureText(ctx context.Context, content, instructions string) (string, error) {
	return "", nil
}

func (s *stubDocService) Get(ctx context.Context, id string) (*models.Document, error) {
	return nil, nil
}

func (s *stubDocService) List(ctx context.Context) ([]*models.Document, error) {
	return nil, nil
}

func (s *stubDocService) DeleteAll(ctx context.Context) (int64, error) {
	return 0, nil
}

func newTestWorker(t *testing.T, svc *stubDocService) *DocumentWorker {
	t.Helper()
	w, err := NewDocumentWorker(&Config{RedisAddr: "localhost:6379"}, svc, logger.NewTestLogger())
	require.NoError(t, err)
	return w
}

func parseTask(t *testing.T, documentID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(queue.ParsePayload{DocumentID: documentID})
	require.NoError(t, err)
	return asynq.NewTask(queue.TaskTypeDocumentParse, payload)
}

func TestStopIsIdempotent(t *testing.T) {
	w := newTestWorker(t, &stubDocService{})

	require.NoError(t, w.Stop())
	// A second Stop must not panic on the already-closed channel.
	require.NoError(t, w.Stop())
}

func TestHandleParseSuccess(t *testing.T) {
	svc := &stubDocService{}
	w := newTestWorker(t, svc)

	err := w.handleDocumentParse(context.Background(), parseTask(t, "doc-1"))

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, svc.parsed)
}

func TestHandleParseBadPayload(t *testing.T) {
	svc := &stubDocService{}
	w := newTestWorker(t, svc)

	err := w.handleDocumentParse(context.Background(),
		asynq.NewTask(queue.TaskTypeDocumentParse, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, svc.parsed)
}

func TestHandleParseEmptyDocumentID(t *testing.T) {
	svc := &stubDocService{}
	w := newTestWorker(t, svc)

	err := w.handleDocumentParse(context.Background(), parseTask(t, ""))

	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, svc.parsed)
}

func TestHandleParseMissingDocument(t *testing.T) {
	svc := &stubDocService{parseErr: models.ErrDocumentNotFound}
	w := newTestWorker(t, svc)

	err := w.handleDocumentParse(context.Background(), parseTask(t, "gone"))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}
