package memcache

import (
	"context"

	"singlepages/internal/domain"
)

// Durable is a page cache that can report the stored expiry of an entry.
type Durable interface {
	domain.PageCache
	domain.EntryReader
}

// Layered reads through a memory store in front of a durable store. Writes go
// to both; a durable write failure is returned after the memory write.
type Layered struct {
	Memory  *Store
	Durable Durable
}

// NewLayered combines memory and durable stores. Entries back-filled from the
// durable store keep their stored expiry, bounded by the memory store's MaxAge.
func NewLayered(memory *Store, durable Durable) *Layered {
	return &Layered{Memory: memory, Durable: durable}
}

func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if content, ok, _ := l.Memory.Get(ctx, key); ok {
		return content, true, nil
	}
	entry, ok, err := l.Durable.GetEntry(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	l.Memory.putEntry(entry)
	return entry.Content, true, nil
}

func (l *Layered) Put(ctx context.Context, key string, content []byte, ttl domain.TTL) error {
	_ = l.Memory.Put(ctx, key, content, ttl)
	return l.Durable.Put(ctx, key, content, ttl)
}

var _ domain.PageCache = (*Layered)(nil)
