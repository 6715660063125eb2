package service

import (
	"log/slog"
	"time"

	"github.com/mindsync/server/internal/domain"
	"github.com/mindsync/server/pkg/cache"
)

const flagCachePrefix = "flag:"

// FlagService owns the feature flag registry. Reads go through a short-TTL
// in-memory cache; updates invalidate it so a toggle takes effect on the
// next request.
type FlagService struct {
	flagRepo domain.FeatureFlagRepository
	cache    *cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewFlagService creates a new feature flag service
func NewFlagService(flagRepo domain.FeatureFlagRepository, flagCache *cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *FlagService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &FlagService{
		flagRepo: flagRepo,
		cache:    flagCache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Seed upserts the fixed default flags with insert-if-absent semantics
func (s *FlagService) Seed() error {
	if err := s.flagRepo.SeedDefaults(domain.DefaultFlags()); err != nil {
		return err
	}
	s.logger.Info("feature flags seeded")
	return nil
}

// List returns every flag sorted by key
func (s *FlagService) List() ([]*domain.FeatureFlag, error) {
	return s.flagRepo.List()
}

// IsEnabled reports whether a flag is on. Unknown keys read as disabled.
func (s *FlagService) IsEnabled(key string) bool {
	if s.cache != nil {
		if v, ok := s.cache.Get(flagCachePrefix + key); ok {
			return v.(bool)
		}
	}

	flag, err := s.flagRepo.Get(key)
	if err != nil {
		return false
	}

	if s.cache != nil {
		s.cache.Set(flagCachePrefix+key, flag.Enabled, s.cacheTTL)
	}
	return flag.Enabled
}

// Set toggles an existing flag. Unseeded keys are NotFound; flags are
// never created through this path.
func (s *FlagService) Set(key string, enabled bool) (*domain.FeatureFlag, error) {
	flag, err := s.flagRepo.SetEnabled(key, enabled)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(flagCachePrefix + key)
	}

	s.logger.Info("feature flag updated",
		slog.String("key", key),
		slog.Bool("enabled", enabled),
	)

	return flag, nil
}
