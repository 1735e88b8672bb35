package schema

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemonk/internal/models"
	"pagemonk/internal/repository"
	"pagemonk/pkg/logger"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db, err := repository.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger()
	return NewService(repository.NewSchemaRepository(db, log), log)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "receipt", "receipt fields", map[string]any{
		"vendor": "string",
		"total":  "number",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "receipt", got.Name)
	assert.Equal(t, "number", got.FieldSpec["total"])
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "", map[string]any{"vendor": "string"})
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))

	_, err = svc.Create(ctx, "receipt", "", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))

	_, err = svc.Create(ctx, "receipt", "", map[string]any{"total": "float"})
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))
}

func TestSoftDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "receipt", "", map[string]any{"vendor": "string"})
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))

	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Direct lookup still resolves the soft-deleted schema.
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestDeleteMissing(t *testing.T) {
	svc := newTestService(t)

	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrSchemaNotFound)
}
