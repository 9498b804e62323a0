package domain

import "context"

// CityRepository reads city reference data.
type CityRepository interface {
	GetBySlug(ctx context.Context, slug string) (*City, error)
	ListAll(ctx context.Context) ([]City, error)
}

// PageCache stores serialized page payloads keyed by request identity.
// Get must treat expired and missing entries identically (ok == false).
type PageCache interface {
	Get(ctx context.Context, key string) (content []byte, ok bool, err error)
	Put(ctx context.Context, key string, content []byte, ttl TTL) error
}

// EntryReader returns an unexpired entry together with its stored expiry.
type EntryReader interface {
	GetEntry(ctx context.Context, key string) (entry CacheEntry, ok bool, err error)
}
