package statistics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string]int64
}

func newMapCache() *mapCache { return &mapCache{data: map[string]int64{}} }

func (c *mapCache) GetInt(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return 0, errors.New("miss")
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.(int64)
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestService_CountsAndCaches(t *testing.T) {
	repos, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repos.News.Create(ctx, models.NewNews("t", "c", nil, time.Now())))
	require.NoError(t, repos.Question.Create(ctx, models.NewQuestion("a", "b", "c", time.Now())))

	c := newMapCache()
	svc := NewService(repos, c)

	data, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatisticsData{TotalNews: 1, TotalQuestions: 1, TotalUsers: 0}, data)
	assert.EqualValues(t, 1, c.data[CacheKeyNews])

	// served from cache until invalidated
	require.NoError(t, repos.News.Create(ctx, models.NewNews("t2", "c", nil, time.Now())))
	data, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, data.TotalNews)

	svc.Invalidate(ctx)
	data, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, data.TotalNews)
}

func TestService_WithoutCache(t *testing.T) {
	repos, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	svc := NewService(repos, nil)

	data, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, data.TotalNews)

	require.NoError(t, repos.News.Create(ctx, models.NewNews("t", "c", nil, time.Now())))
	svc.Invalidate(ctx)
	data, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, data.TotalNews)
}

// gatedNewsRepository blocks Count until released
type gatedNewsRepository struct {
	repository.NewsRepository
	started chan struct{}
	release chan struct{}
}

func (r *gatedNewsRepository) Count(ctx context.Context) (int64, error) {
	close(r.started)
	<-r.release
	return r.NewsRepository.Count(ctx)
}

func TestService_InvalidateDuringRecountWins(t *testing.T) {
	repos, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	gated := &gatedNewsRepository{
		NewsRepository: repos.News,
		started:        make(chan struct{}),
		release:        make(chan struct{}),
	}
	repos.News = gated

	c := newMapCache()
	svc := NewService(repos, c)

	got := make(chan error, 1)
	go func() {
		_, err := svc.Get(ctx)
		got <- err
	}()
	<-gated.started

	// a write lands while the old totals are being counted
	invalidated := make(chan struct{})
	go func() {
		svc.Invalidate(ctx)
		close(invalidated)
	}()

	select {
	case <-invalidated:
		t.Fatal("invalidate returned before the running recount was stored")
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.release)
	require.NoError(t, <-got)
	<-invalidated

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Empty(t, c.data)
}

func TestService_CountErrorIsReported(t *testing.T) {
	repos, err := repository.NewFileRepositories(t.TempDir())
	require.NoError(t, err)
	repos.Question = failingQuestions{}

	_, err = NewService(repos, newMapCache()).Get(context.Background())
	assert.ErrorContains(t, err, "count questions")
}

type failingQuestions struct{ repository.QuestionRepository }

func (failingQuestions) Count(context.Context) (int64, error) {
	return 0, errors.New("disk gone")
}
