package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService caches rendered JSON payloads. Cache failures are logged and never fail the
// request; the loader result is served instead.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Remember returns the cached payload under key, or runs load, stores its result and returns
// it. The boolean reports a cache hit.
func (s *CacheService) Remember(ctx context.Context, key string, load func(context.Context) (json.RawMessage, error)) (json.RawMessage, bool, error) {
	if !s.Enabled() {
		payload, err := load(ctx)
		return payload, false, err
	}

	var cached json.RawMessage
	start := time.Now()
	err := s.repo.Get(ctx, key, &cached)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err == nil {
		return cached, true, nil
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}

	payload, err := load(ctx)
	if err != nil {
		return nil, false, err
	}

	start = time.Now()
	if err := s.repo.Set(ctx, key, payload, s.defaultTTL); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	s.metrics.ObserveCacheWrite(time.Since(start))
	return payload, false, nil
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
