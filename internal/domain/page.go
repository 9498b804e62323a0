package domain

import "time"

// PagePayloadVersion is bumped whenever the cached JSON shape changes.
const PagePayloadVersion = 1

// Section is one topical block of generated copy. Title and PromptTemplate are
// text/template sources rendered against the city before each request.
type Section struct {
	Title          string
	PromptTemplate string
}

// GeneratedSection is the rendered output of a Section. HTMLContent is either
// generated HTML or an error placeholder, never empty.
type GeneratedSection struct {
	Title       string `json:"title"`
	HTMLContent string `json:"htmlContent"`
}

// RecommendedSite is an affiliate dating portal shown below the content.
type RecommendedSite struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	Features    []string `json:"features"`
}

// PagePayload is the cacheable unit returned to the front end.
type PagePayload struct {
	Version          int                `json:"version"`
	CityName         string             `json:"cityName"`
	Region           string             `json:"region"`
	PageTitle        string             `json:"pageTitle"`
	MetaDescription  string             `json:"metaDescription"`
	CanonicalURL     string             `json:"canonicalUrl"`
	Keywords         string             `json:"keywords"`
	IntroductionHTML string             `json:"introductionHtml"`
	Images           []string           `json:"images"`
	Sections         []GeneratedSection `json:"sections"`
	RecommendedSites []RecommendedSite  `json:"recommendedSites"`
	GeneratedAt      time.Time          `json:"generatedAt"`
}

// Normalize replaces nil slices so the payload always serializes every field.
func (p *PagePayload) Normalize() {
	if p.Version == 0 {
		p.Version = PagePayloadVersion
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sections == nil {
		p.Sections = []GeneratedSection{}
	}
	if p.RecommendedSites == nil {
		p.RecommendedSites = []RecommendedSite{}
	}
	for i := range p.RecommendedSites {
		if p.RecommendedSites[i].Features == nil {
			p.RecommendedSites[i].Features = []string{}
		}
	}
}

// TTL is a calendar-aware cache lifetime.
type TTL struct {
	Months int
	Days   int
}

// DefaultPageTTL keeps generated pages for six months.
var DefaultPageTTL = TTL{Months: 6}

// ExpiresAt returns the expiry instant for an entry written at from.
func (t TTL) ExpiresAt(from time.Time) time.Time {
	return from.AddDate(0, t.Months, t.Days)
}

// CacheEntry is the persisted form of a generated page.
type CacheEntry struct {
	Key       string
	Content   []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ValidAt reports whether the entry may be served at now. Expiry is exclusive.
func (e CacheEntry) ValidAt(now time.Time) bool {
	return e.ExpiresAt.After(now)
}
