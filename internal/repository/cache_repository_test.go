package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/exam-period-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "exam_plan:h0:y2025:all", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "exam_plan:h0:y2025:all", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(ctx, "exam_plan:*"))
	assert.Error(t, repo.Ping(ctx))
}
