package domain

import "strings"

// City is a reference row describing one German city with its own landing page.
type City struct {
	Name          string `json:"name"`
	FederalRegion string `json:"region"`
	Slug          string `json:"slug"`
}

// Valid reports whether the record carries enough data to build a page.
func (c City) Valid() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.Slug) != ""
}

// NormalizeSlug canonicalizes inbound slugs before lookups and cache keys.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(slug), "/"))
}
