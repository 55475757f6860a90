package repository

import (
	"context"
	"fmt"

	"StructSnap/internal/domain/models"
	"StructSnap/internal/domain/repository"
	"StructSnap/pkg/cache"
)

// RedisLatestStore keeps the mutable "latest" pointers in Redis, outside the
// immutable snapshot history. Keys live under the cache prefix:
// latest:{symbol}:{variant} and report:{symbol}. No TTL; a value stands until
// the next successful run replaces it.
type RedisLatestStore struct {
	c cache.Service
}

func NewRedisLatestStore(c cache.Service) repository.LatestStore {
	return &RedisLatestStore{c: c}
}

func latestKey(symbol string, variant models.Variant) string {
	return fmt.Sprintf("latest:%s:%s", symbol, variant)
}

func reportKey(symbol string) string {
	return fmt.Sprintf("report:%s", symbol)
}

func (s *RedisLatestStore) SetLatest(ctx context.Context, symbol string, variant models.Variant, payload []byte) error {
	return s.c.Set(ctx, latestKey(symbol, variant), string(payload), 0)
}

func (s *RedisLatestStore) GetLatest(ctx context.Context, symbol string, variant models.Variant) ([]byte, error) {
	var raw string
	if err := s.c.Get(ctx, latestKey(symbol, variant), &raw); err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (s *RedisLatestStore) SetReport(ctx context.Context, symbol string, report string) error {
	return s.c.Set(ctx, reportKey(symbol), report, 0)
}

func (s *RedisLatestStore) GetReport(ctx context.Context, symbol string) (string, error) {
	var report string
	if err := s.c.Get(ctx, reportKey(symbol), &report); err != nil {
		return "", err
	}
	return report, nil
}

func (s *RedisLatestStore) Close() error {
	return nil // client managed by pkg/cache
}
