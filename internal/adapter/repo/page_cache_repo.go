package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"singlepages/internal/domain"
	"singlepages/internal/infra"
	"singlepages/internal/sqlinline"
)

// PageCacheRepositoryPG implements domain.PageCache on the page_cache table.
type PageCacheRepositoryPG struct {
	sql infra.SQLExecutor
	now func() time.Time
}

// NewPageCacheRepository constructs a new page cache repository instance.
func NewPageCacheRepository(sql infra.SQLExecutor) *PageCacheRepositoryPG {
	return &PageCacheRepositoryPG{sql: sql, now: time.Now}
}

// WithClock replaces the time source used for expiry checks.
func (r *PageCacheRepositoryPG) WithClock(now func() time.Time) *PageCacheRepositoryPG {
	if now != nil {
		r.now = now
	}
	return r
}

// Get returns the stored content for key when an unexpired entry exists.
func (r *PageCacheRepositoryPG) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok, err := r.GetEntry(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	return entry.Content, true, nil
}

// GetEntry is Get with the row's timestamps.
func (r *PageCacheRepositoryPG) GetEntry(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	if strings.TrimSpace(key) == "" {
		return domain.CacheEntry{}, false, nil
	}
	var (
		content   string
		createdAt time.Time
		expiresAt time.Time
	)
	err := r.sql.QueryRow(ctx, sqlinline.QSelectValidPageCache, key, r.now().UTC()).Scan(&content, &createdAt, &expiresAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return domain.CacheEntry{}, false, nil
		}
		return domain.CacheEntry{}, false, fmt.Errorf("read page cache %q: %w", key, err)
	}
	return domain.CacheEntry{
		Key:       key,
		Content:   []byte(content),
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, true, nil
}

// Put stores content under key, replacing any previous entry and restarting its TTL.
func (r *PageCacheRepositoryPG) Put(ctx context.Context, key string, content []byte, ttl domain.TTL) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("page cache key is required")
	}
	now := r.now().UTC()
	expires := ttl.ExpiresAt(now)
	if !expires.After(now) {
		return fmt.Errorf("page cache ttl must be positive")
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QUpsertPageCache, key, string(content), now, expires); err != nil {
		return fmt.Errorf("write page cache %q: %w", key, err)
	}
	return nil
}

var (
	_ domain.PageCache   = (*PageCacheRepositoryPG)(nil)
	_ domain.EntryReader = (*PageCacheRepositoryPG)(nil)
)
