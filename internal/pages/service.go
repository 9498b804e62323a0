// Package pages assembles city landing pages from generated sections, stock
// images and affiliate recommendations, with a cache in front.
package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"singlepages/internal/domain"
	"singlepages/internal/providers/content"
	"singlepages/internal/providers/image"
)

const maxImages = 2

// SectionWriter generates one section. It must not fail; errors are rendered
// into the returned section.
type SectionWriter interface {
	Generate(ctx context.Context, section domain.Section, data content.PromptData) domain.GeneratedSection
}

// ImageMirror re-hosts an image and returns the URL to publish.
type ImageMirror interface {
	Mirror(ctx context.Context, sourceURL, slug string, index int) string
}

type Options struct {
	Cities       domain.CityRepository
	Cache        domain.PageCache
	Writer       SectionWriter
	Images       image.Provider
	Mirror       ImageMirror
	Sections     []domain.Section
	ImageQueries []string
	TTL          domain.TTL
	SiteBaseURL  string
	Logger       zerolog.Logger
	Now          func() time.Time
}

// Service produces page payloads, serving cached content when it is still valid.
type Service struct {
	cities       domain.CityRepository
	cache        domain.PageCache
	writer       SectionWriter
	images       image.Provider
	mirror       ImageMirror
	sections     []domain.Section
	imageQueries []string
	ttl          domain.TTL
	siteBaseURL  string
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(opts Options) (*Service, error) {
	if opts.Cities == nil {
		return nil, errors.New("pages: city repository is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("pages: page cache is required")
	}
	if opts.Writer == nil {
		return nil, errors.New("pages: section writer is required")
	}
	if opts.Images == nil {
		return nil, errors.New("pages: image provider is required")
	}
	sections := opts.Sections
	if len(sections) == 0 {
		sections = DefaultSections
	}
	queries := opts.ImageQueries
	if queries == nil {
		queries = DefaultImageQueries
	}
	ttl := opts.TTL
	if ttl == (domain.TTL{}) {
		ttl = domain.DefaultPageTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		cities:       opts.Cities,
		cache:        opts.Cache,
		writer:       opts.Writer,
		images:       opts.Images,
		mirror:       opts.Mirror,
		sections:     sections,
		imageQueries: queries,
		ttl:          ttl,
		siteBaseURL:  strings.TrimRight(strings.TrimSpace(opts.SiteBaseURL), "/"),
		logger:       opts.Logger,
		now:          now,
	}, nil
}

// CacheKey is the cache identity of a city page.
func CacheKey(slug string) string {
	return "/singles/" + domain.NormalizeSlug(slug)
}

// Page resolves slug to a city and returns its page.
func (s *Service) Page(ctx context.Context, slug string) Result {
	slug = domain.NormalizeSlug(slug)
	city, err := s.lookup(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return notFoundResult(slug, s.NotFoundPayload(slug))
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("city lookup failed")
		return errorResult(slug, "lookup", err)
	}
	return s.Generate(ctx, *city)
}

// Generate returns the page of city, cache first.
func (s *Service) Generate(ctx context.Context, city domain.City) Result {
	return s.generate(ctx, city, true)
}

// Regenerate builds the page of city without consulting the cache and
// overwrites any stored entry.
func (s *Service) Regenerate(ctx context.Context, city domain.City) Result {
	return s.generate(ctx, city, false)
}

// Lookup resolves a slug through the city repository.
func (s *Service) Lookup(ctx context.Context, slug string) (*domain.City, error) {
	return s.lookup(ctx, domain.NormalizeSlug(slug))
}

// NotFoundPayload is the generic page offered alongside a not-found response.
func (s *Service) NotFoundPayload(slug string) *domain.PagePayload {
	return s.minimalPayload(domain.City{Slug: slug}, s.now())
}

func (s *Service) lookup(ctx context.Context, slug string) (*domain.City, error) {
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	city, err := s.cities.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if city == nil {
		return nil, domain.ErrNotFound
	}
	return city, nil
}

func (s *Service) generate(ctx context.Context, city domain.City, useCache bool) Result {
	slug := domain.NormalizeSlug(city.Slug)
	log := s.logger.With().Str("slug", slug).Logger()
	if !city.Valid() {
		log.Error().Err(domain.ErrInvalidCity).Msg("serving minimal page")
		return degradedResult(slug, s.minimalPayload(city, s.now()), []string{domain.ErrInvalidCity.Error()})
	}
	key := CacheKey(slug)

	if useCache {
		if res, ok := s.fromCache(ctx, key, slug, log); ok {
			return res
		}
	}

	now := s.now()
	data := content.PromptData{
		City:   strings.TrimSpace(city.Name),
		Region: strings.TrimSpace(city.FederalRegion),
		Slug:   slug,
		Year:   now.Year(),
	}
	sections, images, warnings := s.fanOut(ctx, data)
	payload := s.assemble(data, now, sections, images)

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("payload serialization failed")
		warnings = append(warnings, fmt.Sprintf("serialize payload: %v", err))
		return degradedResult(slug, s.minimalPayload(city, now), warnings)
	}
	if err := s.cache.Put(ctx, key, body, s.ttl); err != nil {
		log.Error().Err(err).Str("key", key).Msg("page cache write failed")
	}
	log.Info().Int("sections", len(payload.Sections)).Int("images", len(payload.Images)).Int("warnings", len(warnings)).Msg("page generated")
	return okResult(slug, payload, body, false, warnings)
}

func (s *Service) fromCache(ctx context.Context, key, slug string, log zerolog.Logger) (Result, bool) {
	body, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("page cache read failed, regenerating")
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}
	var payload domain.PagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cached page unreadable, regenerating")
		return Result{}, false
	}
	log.Debug().Str("key", key).Msg("page cache hit")
	return okResult(slug, &payload, body, true, nil), true
}

// fanOut runs every section and image task concurrently and waits for all of
// them. Tasks never fail; a panicking task yields a placeholder or no image.
func (s *Service) fanOut(ctx context.Context, data content.PromptData) ([]domain.GeneratedSection, []string, []string) {
	sections := make([]domain.GeneratedSection, len(s.sections))
	images := make([]string, len(s.imageQueries))
	panics := make([]string, len(s.sections)+len(s.imageQueries))

	var g errgroup.Group
	for i, section := range s.sections {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					title := section.Title
					if rendered, err := content.RenderTemplate("title", section.Title, data); err == nil {
						title = strings.TrimSpace(rendered)
					}
					sections[i] = domain.GeneratedSection{Title: title, HTMLContent: content.Placeholder(title, fmt.Errorf("panic: %v", r))}
					panics[i] = fmt.Sprintf("section %d panicked: %v", i, r)
				}
			}()
			sections[i] = s.writer.Generate(ctx, section, data)
			return nil
		})
	}
	for i, query := range s.imageQueries {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					images[i] = ""
					panics[len(s.sections)+i] = fmt.Sprintf("image %d panicked: %v", i, r)
				}
			}()
			q, err := content.RenderTemplate("image", query, data)
			if err != nil {
				q = data.City
			}
			link := s.images.FetchImage(ctx, strings.TrimSpace(q))
			if link != "" && s.mirror != nil {
				link = s.mirror.Mirror(ctx, link, data.Slug, i+1)
			}
			images[i] = link
			return nil
		})
	}
	_ = g.Wait()

	var warnings []string
	for _, msg := range panics {
		if msg != "" {
			s.logger.Error().Str("slug", data.Slug).Msg(msg)
			warnings = append(warnings, msg)
		}
	}
	for i, sec := range sections {
		if content.IsPlaceholder(sec.HTMLContent) {
			warnings = append(warnings, fmt.Sprintf("section %d (%s) degraded", i, sec.Title))
		}
	}
	return sections, images, warnings
}

func (s *Service) assemble(data content.PromptData, now time.Time, generated []domain.GeneratedSection, fetched []string) *domain.PagePayload {
	images := make([]string, 0, maxImages)
	for _, link := range fetched {
		if link == "" {
			continue
		}
		if len(images) == maxImages {
			break
		}
		images = append(images, link)
	}

	p := &domain.PagePayload{
		CityName:         data.City,
		Region:           data.Region,
		PageTitle:        pageTitle(data.City, data.Year),
		MetaDescription:  metaDescription(data.City),
		CanonicalURL:     canonicalURL(s.siteBaseURL, data.Slug),
		Keywords:         keywords(data.City),
		Images:           images,
		RecommendedSites: RecommendedSites(data),
		GeneratedAt:      now.UTC(),
	}
	if len(generated) > 0 {
		p.IntroductionHTML = generated[0].HTMLContent
		p.Sections = append([]domain.GeneratedSection(nil), generated[1:]...)
	}
	if len(p.Sections) > 0 && len(images) > 1 {
		p.Sections[0].HTMLContent = floatImage(images[1], data.City, p.Sections[0].HTMLContent)
	}
	p.Normalize()
	return p
}

// floatImage places the second page image to the left of a section body.
func floatImage(src, city, body string) string {
	return `<div style="overflow: hidden;">` +
		`<img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString("Leben in "+city) + `" ` +
		`style="float: left; margin-right: 10px; margin-bottom: 5px; max-width: 200px; height: auto;" />` +
		body +
		`<div style="clear: both;"></div></div>`
}
