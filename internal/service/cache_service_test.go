package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) error {
	return errors.New("redis: connection pool timeout")
}

func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis: connection pool timeout")
}

func (brokenCache) DeleteByPattern(context.Context, string) error {
	return errors.New("redis: connection pool timeout")
}

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(&memoryCache{}, nil, 0, zap.NewNop(), false)
	assert.False(t, svc.Enabled())

	var dest []string
	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), "k", []string{"v"}, 0))
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(&memoryCache{}, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest []string
	hit, err := svc.Get(ctx, "registry:catalog:10:2", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "registry:catalog:10:2", []string{"DIT110"}, 0))
	hit, err = svc.Get(ctx, "registry:catalog:10:2", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"DIT110"}, dest)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio))
}

func TestCacheServiceBackendFailure(t *testing.T) {
	svc := NewCacheService(brokenCache{}, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest []string
	hit, err := svc.Get(ctx, "k", &dest)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, svc.Set(ctx, "k", dest, 0))
	assert.Error(t, svc.Invalidate(ctx, "k*"))
}

func TestRegistrationServiceSurvivesCacheOutage(t *testing.T) {
	cache := NewCacheService(brokenCache{}, nil, time.Minute, zap.NewNop(), true)
	svc, _, _, _ := newRegistrationService(t, cache, nil)

	offer, hit, err := svc.StudentSemesterModules(context.Background(), 901000001, 2, 10)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, offer.Modules, 3)
}
