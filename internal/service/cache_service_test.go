package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
)

type memoryCacheRepo struct {
	items    map[string][]byte
	patterns []string
	getErr   error
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.items == nil {
		m.items = map[string][]byte{}
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	m.patterns = append(m.patterns, pattern)
	n := len(m.items)
	m.items = nil
	return n, nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &memoryCacheRepo{}
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)

	var out []string
	hit, err := svc.Get(context.Background(), hallPlanKey(1), &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), hallPlanKey(1), []string{"1001"}, 0))
	hit, err = svc.Get(context.Background(), hallPlanKey(1), &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"1001"}, out)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)

	svc.InvalidateSeating(context.Background())
	assert.Equal(t, []string{"seating:*"}, repo.patterns)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &memoryCacheRepo{}
	svc := NewCacheService(repo, nil, 0, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Nil(t, repo.items)
	var out int
	hit, err := svc.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	var nilSvc *CacheService
	nilSvc.InvalidateSeating(context.Background())
}

func TestCacheServiceGetError(t *testing.T) {
	svc := NewCacheService(&memoryCacheRepo{getErr: errors.New("redis down")}, nil, 0, nil, true)
	var out int
	hit, err := svc.Get(context.Background(), "k", &out)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestConsolidatedKey(t *testing.T) {
	id := int64(4)
	assert.Equal(t, "seating:consolidated:all", consolidatedKey(nil))
	assert.Equal(t, "seating:consolidated:hall:4", consolidatedKey(&id))
}
