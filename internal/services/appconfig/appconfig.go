// Package appconfig содержит бизнес-логику удалённо управляемой
// конфигурации приложения: чтение с кэшем, частичное обновление
// со слиянием по группам и публикация изменений в канал.
package appconfig

import (
	"context"
	"log/slog"
	"time"

	"github.com/rbnsaiful/topup-rewards/internal/feed"
	"github.com/rbnsaiful/topup-rewards/internal/lib/sl"
	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

const (
	cacheKey = "appconfig:document"
	cacheTTL = time.Hour
)

// Repository читает и пишет документ конфигурации.
type Repository interface {
	GetSettings(ctx context.Context) (settings.AppSettings, error)
	SaveSettings(ctx context.Context, doc settings.AppSettings) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Publisher публикует события изменений в канал.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Service реализует операции над конфигурацией приложения.
type Service struct {
	repo  Repository
	cache Cache
	pub   Publisher
	log   *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(repo Repository, cache Cache, pub Publisher, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, pub: pub, log: log}
}

// Get возвращает текущую конфигурацию, по возможности из кэша.
func (s *Service) Get(ctx context.Context) (settings.AppSettings, error) {
	var cached settings.AppSettings
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read settings cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	doc, err := s.repo.GetSettings(ctx)
	if err != nil {
		return settings.Default(), err
	}
	if err := s.cache.Set(ctx, cacheKey, doc, cacheTTL); err != nil {
		s.log.Warn("failed to cache settings", sl.Err(err))
	}
	return doc, nil
}

// Update применяет частичное обновление администратора: текущий документ
// сливается с изменением по группам, сохраняется целиком и публикуется
// в канал config. Отсутствующие в изменении ключи сохраняют значения.
func (s *Service) Update(ctx context.Context, patch settings.Patch) (settings.AppSettings, error) {
	current, err := s.repo.GetSettings(ctx)
	if err != nil {
		return settings.Default(), err
	}

	merged := settings.Merge(current, patch)
	if err = s.repo.SaveSettings(ctx, merged); err != nil {
		return settings.Default(), err
	}

	if err = s.cache.Set(ctx, cacheKey, merged, cacheTTL); err != nil {
		s.log.Warn("failed to cache settings", sl.Err(err))
	}
	if err = s.pub.Publish(ctx, feed.ChannelConfig, merged); err != nil {
		s.log.Warn("failed to publish config event", sl.Err(err))
	}

	s.log.Info("updated app settings")
	return merged, nil
}
