package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-period-api/internal/models"
)

func TestMemoryExportJobRepositoryLifecycle(t *testing.T) {
	repo := NewMemoryExportJobRepository(time.Hour)
	ctx := context.Background()

	job := &models.ExportJob{Params: models.ExportJobParams{Format: "pdf", HorizonYears: 4}, CreatedBy: "admin"}
	require.NoError(t, repo.Create(ctx, job))
	require.NotEmpty(t, job.ID)
	assert.Equal(t, models.ExportStatusQueued, job.Status)

	finished := models.ExportStatusFinished
	progress := 100
	url := "/api/v1/exports/download/token"
	require.NoError(t, repo.Update(ctx, job.ID, UpdateExportJobParams{Status: &finished, Progress: &progress, ResultURL: &url}))

	stored, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, finished, stored.Status)
	require.NotNil(t, stored.ResultURL)
	assert.Equal(t, url, *stored.ResultURL)
	assert.True(t, stored.Done())

	clear := ""
	msg := "boom"
	require.NoError(t, repo.Update(ctx, job.ID, UpdateExportJobParams{ErrorMessage: &msg}))
	require.NoError(t, repo.Update(ctx, job.ID, UpdateExportJobParams{ErrorMessage: &clear}))
	stored, err = repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ErrorMessage)
}

func TestMemoryExportJobRepositoryExpires(t *testing.T) {
	repo := NewMemoryExportJobRepository(time.Hour)
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	job := &models.ExportJob{ID: "job-1"}
	require.NoError(t, repo.Create(ctx, job))
	assert.Error(t, repo.Create(ctx, &models.ExportJob{ID: "job-1"}))

	now = now.Add(2 * time.Hour)
	_, err := repo.GetByID(ctx, "job-1")
	assert.ErrorIs(t, err, ErrExportJobNotFound)
	assert.ErrorIs(t, repo.Update(ctx, "job-1", UpdateExportJobParams{}), ErrExportJobNotFound)
}

func TestMemoryExportJobRepositoryPurge(t *testing.T) {
	repo := NewMemoryExportJobRepository(time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.ExportJob{ID: "old"}))
	now = now.Add(2 * time.Minute)
	require.NoError(t, repo.Create(ctx, &models.ExportJob{ID: "new"}))

	removed, err := repo.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, err = repo.GetByID(ctx, "new")
	assert.NoError(t, err)
}
