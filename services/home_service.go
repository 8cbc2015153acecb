package services

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"rentals-api/domain"
	"rentals-api/repositories"
)

const homeCacheKey = "home:stats"

// HomeService serves the landing page statistics from cache when possible.
type HomeService interface {
	Stats(ctx context.Context) (*domain.HomeStats, error)
	Invalidator
}

type homeService struct {
	stats  repositories.StatsRepository
	cache  repositories.CacheRepository
	ttl    time.Duration
	logger log.Logger
}

func NewHomeService(stats repositories.StatsRepository, cache repositories.CacheRepository, ttl time.Duration, logger log.Logger) HomeService {
	return &homeService{stats: stats, cache: cache, ttl: ttl, logger: log.With(logger, "service", "home")}
}

func (s *homeService) Stats(ctx context.Context) (*domain.HomeStats, error) {
	if stats, ok := s.cache.GetHome(homeCacheKey); ok {
		return stats, nil
	}

	stats, err := s.stats.Home(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetHome(homeCacheKey, stats, s.ttl)
	level.Debug(s.logger).Log("msg", "home statistics recomputed")
	return stats, nil
}

func (s *homeService) Invalidate() {
	s.cache.Delete(homeCacheKey)
}
