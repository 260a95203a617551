package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-period-api/internal/dto"
	"github.com/noah-isme/exam-period-api/internal/models"
	"github.com/noah-isme/exam-period-api/internal/source"
	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
	"github.com/noah-isme/exam-period-api/pkg/export"
	"github.com/noah-isme/exam-period-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	plans := newPlanServiceForTest(t, source.Static{Periods: samplePeriods()}, nil)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(plans, nil, store, signer, NewMetricsService(), ExportConfig{APIPrefix: "/api/v1/", ResultTTL: time.Hour}, zap.NewNop())
	svc.now = testClock
	return svc, store
}

func TestExportServiceRender(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	artifact, err := svc.Render(context.Background(), "CSV", dto.ExamPlanQuery{})
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, artifact.Format)
	assert.Equal(t, "pruefungszeitraeume_alle_0j_20250601.csv", artifact.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", artifact.ContentType)
	assert.Contains(t, string(artifact.Data), "Sommersemester 2024")

	artifact, err = svc.Render(context.Background(), "markdown", dto.ExamPlanQuery{Semester: "Wintersemester 2024/25"})
	require.NoError(t, err)
	assert.Equal(t, "pruefungszeitraeume_wintersemester_2024-25_0j_20250601.md", artifact.Filename)
	assert.NotContains(t, string(artifact.Data), "Sommersemester 2024")
}

func TestExportServiceRenderUnsupportedFormat(t *testing.T) {
	svc, _ := newExportServiceForTest(t)

	_, err := svc.Render(context.Background(), "docx", dto.ExamPlanQuery{})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnsupportedFormat.Code, appErr.Code)
}

func TestExportServiceGenerateStoresAndSigns(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	job := &models.ExportJob{ID: "job-1", Params: models.ExportJobParams{Format: "ics"}}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.ObjectKey, "job-1/"))
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/download/"))
	assert.True(t, strings.HasSuffix(result.URL, result.Token))

	data, err := os.ReadFile(store.Path(result.ObjectKey))
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN:VCALENDAR")
	assert.Equal(t, ".ics", filepath.Ext(result.ObjectKey))

	jobID, key, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, result.ObjectKey, key)

	object, err := svc.Open(context.Background(), key)
	require.NoError(t, err)
	body, err := io.ReadAll(object.Body)
	require.NoError(t, err)
	require.NoError(t, object.Body.Close())
	assert.Equal(t, data, body)

	require.NoError(t, svc.Delete(context.Background(), key))
	_, err = svc.Open(context.Background(), key)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestExportServiceFormats(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	assert.ElementsMatch(t, []export.Format{
		export.FormatCSV, export.FormatICS, export.FormatMarkdown, export.FormatPDF, export.FormatXLSX,
	}, svc.Formats())
}
