// Package memcache keeps recently generated pages in process memory so hot
// cities are served without a database round trip.
package memcache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"singlepages/internal/domain"
)

const (
	defaultMaxAge          = 30 * time.Minute
	defaultCleanupInterval = time.Hour
)

// Options configures an in-process store.
type Options struct {
	// MaxAge bounds how long an entry stays in memory regardless of its TTL.
	// Zero means the default of 30 minutes; a negative value disables the bound.
	MaxAge          time.Duration
	CleanupInterval time.Duration
	Now             func() time.Time
}

// Store is a domain.PageCache backed by go-cache. Entries carry their own
// expiry which is checked against the configured clock on every read.
type Store struct {
	items  *cache.Cache
	maxAge time.Duration
	now    func() time.Time
}

// New constructs an in-process page cache.
func New(opts Options) *Store {
	if opts.MaxAge == 0 {
		opts.MaxAge = defaultMaxAge
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		items:  cache.New(cache.NoExpiration, opts.CleanupInterval),
		maxAge: opts.MaxAge,
		now:    opts.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	entry, ok := v.(domain.CacheEntry)
	if !ok || !entry.ValidAt(s.now()) {
		s.items.Delete(key)
		return nil, false, nil
	}
	return entry.Content, true, nil
}

func (s *Store) Put(_ context.Context, key string, content []byte, ttl domain.TTL) error {
	now := s.now()
	s.store(domain.CacheEntry{
		Key:       key,
		Content:   append([]byte(nil), content...),
		CreatedAt: now,
		ExpiresAt: ttl.ExpiresAt(now),
	})
	return nil
}

// putEntry keeps a copy of an entry read elsewhere, expiring no later than
// the entry itself.
func (s *Store) putEntry(entry domain.CacheEntry) {
	entry.Content = append([]byte(nil), entry.Content...)
	s.store(entry)
}

// store holds entry until its expiry, bounded by maxAge from now.
func (s *Store) store(entry domain.CacheEntry) {
	now := s.now()
	if s.maxAge > 0 {
		if limit := now.Add(s.maxAge); limit.Before(entry.ExpiresAt) {
			entry.ExpiresAt = limit
		}
	}
	life := entry.ExpiresAt.Sub(now)
	if life <= 0 {
		s.items.Delete(entry.Key)
		return
	}
	s.items.Set(entry.Key, entry, life)
}

// Len reports the number of entries currently held, including expired ones
// awaiting cleanup.
func (s *Store) Len() int {
	return s.items.ItemCount()
}

var _ domain.PageCache = (*Store)(nil)
