package cache

import (
	"context"
	"time"
)

// NullCache is a Cache that stores nothing. It backs the "off" driver so
// callers can unconditionally go through the Cache interface regardless
// of whether caching is enabled for a run.
type NullCache struct{}

// NewNullCache returns a no-op Cache.
func NewNullCache() *NullCache { return &NullCache{} }

func (NullCache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, ErrKeyNotFound
}

func (NullCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (NullCache) Delete(_ context.Context, _ string) error { return nil }

func (NullCache) Exists(_ context.Context, _ string) (bool, error) { return false, nil }

func (NullCache) GetWithTTL(_ context.Context, _ string) ([]byte, time.Duration, error) {
	return nil, 0, ErrKeyNotFound
}

func (NullCache) MGet(_ context.Context, _ []string) (map[string][]byte, error) {
	return map[string][]byte{}, nil
}

func (NullCache) MSet(_ context.Context, _ map[string][]byte, _ time.Duration) error { return nil }

func (NullCache) MDelete(_ context.Context, keys []string) (int64, error) { return 0, nil }

func (NullCache) Keys(_ context.Context, _ string) ([]string, error) { return nil, nil }

func (NullCache) DeleteByPattern(_ context.Context, _ string) (int64, error) { return 0, nil }

func (NullCache) Stats(_ context.Context) (*Stats, error) {
	return &Stats{Backend: BackendNull}, nil
}

func (NullCache) Clear(_ context.Context) error { return nil }

func (NullCache) Close() error { return nil }
