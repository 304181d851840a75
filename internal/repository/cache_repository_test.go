package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ntholi/registry-web/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest []string
	err := repo.Get(ctx, "registry:catalog:10:2", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "registry:catalog:10:2", []string{"DIT110"}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(ctx, "registry:catalog:*"))
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.Close())
}
