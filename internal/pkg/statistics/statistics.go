package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/NewsDesk/app/repository"
)

const (
	CacheKeyNews      = "statistics:news:total"
	CacheKeyQuestions = "statistics:questions:total"
	CacheKeyUsers     = "statistics:users:total"
	CacheExpiration   = 30 * time.Minute
)

// Cache is the part of cache.Store the statistics need
type Cache interface {
	GetInt(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// StatisticsData holds the totals shown on the landing page
type StatisticsData struct {
	TotalNews      int64 `json:"news"`
	TotalQuestions int64 `json:"questions"`
	TotalUsers     int64 `json:"users"`
}

// Service counts records and keeps the result in the cache
type Service struct {
	repos *repository.Repositories
	cache Cache
	mu    sync.Mutex
}

// NewService creates a statistics service. cache may be nil.
func NewService(repos *repository.Repositories, cache Cache) *Service {
	return &Service{repos: repos, cache: cache}
}

// Get returns the totals, from the cache when all of them are present
func (s *Service) Get(ctx context.Context) (StatisticsData, error) {
	if data, ok := s.cached(ctx); ok {
		return data, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// another request may have filled the cache meanwhile
	if data, ok := s.cached(ctx); ok {
		return data, nil
	}

	data, err := s.count(ctx)
	if err != nil {
		return StatisticsData{}, err
	}
	s.store(ctx, data)
	return data, nil
}

// Invalidate drops the cached totals after a write. It waits for a recount
// in progress, so totals counted before the write never outlive it.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cache.Delete(ctx, CacheKeyNews, CacheKeyQuestions, CacheKeyUsers); err != nil {
		log.Warnf("Error invalidating statistics cache: %v", err)
	}
}

func (s *Service) cached(ctx context.Context) (StatisticsData, bool) {
	if s.cache == nil {
		return StatisticsData{}, false
	}
	var data StatisticsData
	var err error
	if data.TotalNews, err = s.cache.GetInt(ctx, CacheKeyNews); err != nil {
		return data, false
	}
	if data.TotalQuestions, err = s.cache.GetInt(ctx, CacheKeyQuestions); err != nil {
		return data, false
	}
	if data.TotalUsers, err = s.cache.GetInt(ctx, CacheKeyUsers); err != nil {
		return data, false
	}
	return data, true
}

func (s *Service) count(ctx context.Context) (StatisticsData, error) {
	var data StatisticsData

	var err error
	if data.TotalNews, err = s.repos.News.Count(ctx); err != nil {
		return data, fmt.Errorf("count news: %w", err)
	}
	if data.TotalQuestions, err = s.repos.Question.Count(ctx); err != nil {
		return data, fmt.Errorf("count questions: %w", err)
	}
	if data.TotalUsers, err = s.repos.User.Count(ctx); err != nil {
		return data, fmt.Errorf("count users: %w", err)
	}
	return data, nil
}

func (s *Service) store(ctx context.Context, data StatisticsData) {
	if s.cache == nil {
		return
	}
	values := map[string]int64{
		CacheKeyNews:      data.TotalNews,
		CacheKeyQuestions: data.TotalQuestions,
		CacheKeyUsers:     data.TotalUsers,
	}
	for key, v := range values {
		if err := s.cache.Set(ctx, key, v, CacheExpiration); err != nil {
			log.Warnf("Error caching %s: %v", key, err)
			return
		}
	}
	log.Debugf("Statistics updated in cache: news %d, questions %d, users %d",
		data.TotalNews, data.TotalQuestions, data.TotalUsers)
}
