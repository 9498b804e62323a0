package pages

import (
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"singlepages/internal/domain"
	"singlepages/internal/providers/content"
)

var titleCaser = cases.Title(language.German)

// DisplayNameFromSlug turns "bad-homburg" into "Bad Homburg" for pages whose
// city record is unavailable.
func DisplayNameFromSlug(slug string) string {
	name := strings.Join(strings.FieldsFunc(domain.NormalizeSlug(slug), func(r rune) bool {
		return r == '-' || r == '_'
	}), " ")
	return titleCaser.String(name)
}

func welcome(city string) string {
	return fmt.Sprintf("Willkommen in %s! Leider können wir momentan keine detaillierten Informationen anzeigen. Bitte versuchen Sie es später erneut.", city)
}

// minimalPayload is the last-resort page: metadata, a welcome sentence and
// the affiliate list, without generated sections or images.
func (s *Service) minimalPayload(city domain.City, now time.Time) *domain.PagePayload {
	name := strings.TrimSpace(city.Name)
	if name == "" {
		name = DisplayNameFromSlug(city.Slug)
	}
	data := content.PromptData{City: name, Region: city.FederalRegion, Slug: domain.NormalizeSlug(city.Slug), Year: now.Year()}
	p := &domain.PagePayload{
		CityName:         name,
		Region:           city.FederalRegion,
		PageTitle:        pageTitle(name, data.Year),
		MetaDescription:  metaDescription(name),
		Keywords:         keywords(name),
		IntroductionHTML: `<p class="text-lg mb-4">` + html.EscapeString(welcome(name)) + `</p>`,
		RecommendedSites: RecommendedSites(data),
		GeneratedAt:      now.UTC(),
	}
	if data.Slug != "" {
		p.CanonicalURL = canonicalURL(s.siteBaseURL, data.Slug)
	}
	p.Normalize()
	return p
}
