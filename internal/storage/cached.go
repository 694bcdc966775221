package storage

import (
	"context"
	"time"

	"github.com/fieldmark/relabel/internal/cache"
)

// CachedSource wraps a Source with a byte cache so repeated batch runs do
// not re-download unchanged objects. Listing always goes to the source;
// only downloads are cached.
type CachedSource struct {
	src       Source
	cache     cache.Cache
	container string
	ttl       time.Duration
}

// NewCachedSource wraps src, keying cache entries by container and object.
func NewCachedSource(src Source, c cache.Cache, container string, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, cache: c, container: container, ttl: ttl}
}

// List delegates to the underlying source.
func (s *CachedSource) List(ctx context.Context, prefix string) ([]string, error) {
	return s.src.List(ctx, prefix)
}

// Download serves from the cache when possible.
func (s *CachedSource) Download(ctx context.Context, key string) ([]byte, error) {
	ck := cache.Key(s.container, key)
	if data, found := s.cache.Get(ck); found {
		return data, nil
	}

	data, err := s.src.Download(ctx, key)
	if err != nil {
		return nil, err
	}

	// A failed cache write is not a download failure.
	_ = s.cache.Set(ck, data, s.ttl)

	return data, nil
}

// LimitedSource gates a Source behind a per-container rate limiter.
type LimitedSource struct {
	src       Source
	waiter    Waiter
	container string
}

// NewLimitedSource wraps src with the given limiter.
func NewLimitedSource(src Source, w Waiter, container string) *LimitedSource {
	return &LimitedSource{src: src, waiter: w, container: container}
}

func (s *LimitedSource) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.waiter.Wait(ctx, s.container); err != nil {
		return nil, err
	}
	return s.src.List(ctx, prefix)
}

func (s *LimitedSource) Download(ctx context.Context, key string) ([]byte, error) {
	if err := s.waiter.Wait(ctx, s.container); err != nil {
		return nil, err
	}
	return s.src.Download(ctx, key)
}

// LimitedDestination gates a Destination behind a per-container limiter.
type LimitedDestination struct {
	dst       Destination
	waiter    Waiter
	container string
}

// NewLimitedDestination wraps dst with the given limiter.
func NewLimitedDestination(dst Destination, w Waiter, container string) *LimitedDestination {
	return &LimitedDestination{dst: dst, waiter: w, container: container}
}

func (d *LimitedDestination) Upload(ctx context.Context, key string, data []byte) error {
	if err := d.waiter.Wait(ctx, d.container); err != nil {
		return err
	}
	return d.dst.Upload(ctx, key, data)
}
