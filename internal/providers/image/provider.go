// Package image finds stock photos for city pages.
package image

import "context"

// Provider returns one image URL per search query. Implementations never fail;
// a default image stands in for anything the upstream cannot deliver.
type Provider interface {
	FetchImage(ctx context.Context, query string) string
}

// DefaultImages are served when a search yields nothing usable.
var DefaultImages = []string{
	"https://images.unsplash.com/photo-1519999482648-25049ddd37b1",
	"https://images.unsplash.com/photo-1488590528505-98d2b5aba04b",
	"https://images.unsplash.com/photo-1518770660439-4636190af475",
	"https://images.unsplash.com/photo-1461749280684-dccba630e2f6",
	"https://images.unsplash.com/photo-1486312338219-ce68d2c6f44d",
}
