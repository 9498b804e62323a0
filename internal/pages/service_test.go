package pages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"singlepages/internal/adapter/memcache"
	"singlepages/internal/domain"
	"singlepages/internal/infra"
	"singlepages/internal/providers/content"
	"singlepages/internal/providers/image"
)

var koeln = domain.City{Name: "Köln", FederalRegion: "Nordrhein-Westfalen", Slug: "koeln"}

type fakeCities struct {
	cities map[string]domain.City
	err    error
}

func (f fakeCities) GetBySlug(ctx context.Context, slug string) (*domain.City, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.cities[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (f fakeCities) ListAll(ctx context.Context) ([]domain.City, error) {
	out := []domain.City{}
	for _, c := range f.cities {
		out = append(out, c)
	}
	return out, f.err
}

type fakeWriter struct {
	calls atomic.Int32
	fail  func(title string) error
	panic func(title string) bool
}

func (w *fakeWriter) Generate(ctx context.Context, section domain.Section, data content.PromptData) domain.GeneratedSection {
	w.calls.Add(1)
	title, _ := content.RenderTemplate("title", section.Title, data)
	if w.panic != nil && w.panic(title) {
		panic("writer exploded")
	}
	if w.fail != nil {
		if err := w.fail(title); err != nil {
			return domain.GeneratedSection{Title: title, HTMLContent: content.Placeholder(title, err)}
		}
	}
	return domain.GeneratedSection{Title: title, HTMLContent: "<p>" + title + "</p>"}
}

type fakeImages struct {
	mu      sync.Mutex
	calls   int
	queries []string
	url     func(query string) string
}

func (f *fakeImages) FetchImage(ctx context.Context, query string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, query)
	if f.url != nil {
		return f.url(query)
	}
	return "https://img.example/" + strings.ReplaceAll(query, " ", "_") + ".jpg"
}

type failingCache struct {
	getErr, putErr error
	puts           int
}

func (c *failingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, c.getErr
}

func (c *failingCache) Put(ctx context.Context, key string, content []byte, ttl domain.TTL) error {
	c.puts++
	return c.putErr
}

type harness struct {
	svc    *Service
	writer *fakeWriter
	images *fakeImages
	cache  *memcache.Store
	now    time.Time
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{
		writer: &fakeWriter{},
		images: &fakeImages{},
		now:    time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	h.cache = memcache.New(memcache.Options{MaxAge: -1, Now: clock})
	opts := Options{
		Cities:      fakeCities{cities: map[string]domain.City{"koeln": koeln}},
		Cache:       h.cache,
		Writer:      h.writer,
		Images:      h.images,
		SiteBaseURL: "https://singleboersen-aktuell.de/",
		Logger:      infra.NopLogger(),
		Now:         clock,
	}
	if mutate != nil {
		mutate(&opts)
	}
	svc, err := NewService(opts)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	h.svc = svc
	return h
}

func TestPageKoelnScenario(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	first := h.svc.Page(ctx, "koeln")
	if first.Kind != KindOk || first.Cached {
		t.Fatalf("unexpected first result kind=%v cached=%v", first.Kind, first.Cached)
	}
	p := first.Payload
	if p.CityName != "Köln" || p.Region != "Nordrhein-Westfalen" {
		t.Fatalf("unexpected city fields %q %q", p.CityName, p.Region)
	}
	if len(p.Sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(p.Sections))
	}
	if len(p.Images) > 2 {
		t.Fatalf("expected at most 2 images, got %d", len(p.Images))
	}
	if len(p.RecommendedSites) != 2 {
		t.Fatalf("expected 2 recommended sites, got %d", len(p.RecommendedSites))
	}
	if p.PageTitle != "Singles in Köln - Die besten Dating-Portale 2025" {
		t.Fatalf("unexpected title %q", p.PageTitle)
	}
	if p.CanonicalURL != "https://singleboersen-aktuell.de/singles/koeln" {
		t.Fatalf("unexpected canonical %q", p.CanonicalURL)
	}
	if p.IntroductionHTML != "<p>Köln – Die Stadt der Singles</p>" {
		t.Fatalf("unexpected introduction %q", p.IntroductionHTML)
	}
	writerCalls, imageCalls := h.writer.calls.Load(), h.images.calls
	if writerCalls != 7 || imageCalls != 2 {
		t.Fatalf("expected 7 section and 2 image calls, got %d and %d", writerCalls, imageCalls)
	}

	h.now = h.now.AddDate(0, 5, 27)
	second := h.svc.Page(ctx, "koeln")
	if second.Kind != KindOk || !second.Cached {
		t.Fatalf("expected cache hit, got kind=%v cached=%v", second.Kind, second.Cached)
	}
	if !bytes.Equal(first.Body, second.Body) {
		t.Fatal("cached body differs from generated body")
	}
	if h.writer.calls.Load() != writerCalls || h.images.calls != imageCalls {
		t.Fatal("cache hit must not trigger outbound calls")
	}
	if diff := cmp.Diff(first.Payload, second.Payload); diff != "" {
		t.Fatalf("payload mismatch (-first +second):\n%s", diff)
	}
}

func TestPageRegeneratesAfterExpiry(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_ = h.svc.Page(ctx, "koeln")

	h.now = h.now.AddDate(0, 6, 0)
	res := h.svc.Page(ctx, "koeln")
	if res.Cached {
		t.Fatal("expired entry must not be served")
	}
	if h.writer.calls.Load() != 14 {
		t.Fatalf("expected regeneration, writer calls = %d", h.writer.calls.Load())
	}
}

func TestSectionCountIsConfiguredMinusOne(t *testing.T) {
	for n := 2; n <= 9; n++ {
		t.Run(fmt.Sprintf("sections_%d", n), func(t *testing.T) {
			sections := make([]domain.Section, n)
			for i := range sections {
				sections[i] = domain.Section{Title: fmt.Sprintf("Teil %d in {{ .City }}", i), PromptTemplate: "x"}
			}
			h := newHarness(t, func(o *Options) { o.Sections = sections })
			res := h.svc.Page(context.Background(), "koeln")
			if got := len(res.Payload.Sections); got != n-1 {
				t.Fatalf("expected %d sections, got %d", n-1, got)
			}
			for i, sec := range res.Payload.Sections {
				if want := fmt.Sprintf("Teil %d in Köln", i+1); sec.Title != want {
					t.Fatalf("section %d title = %q, want %q", i, sec.Title, want)
				}
			}
		})
	}
}

func TestPageDegradesSingleSection(t *testing.T) {
	h := newHarness(t, nil)
	h.writer.fail = func(title string) error {
		if title == "Singles in Köln" {
			return errors.New("openai status 500")
		}
		return nil
	}

	res := h.svc.Page(context.Background(), "koeln")
	if res.Kind != KindOk {
		t.Fatalf("expected ok, got %v", res.Kind)
	}
	degraded := 0
	for _, sec := range res.Payload.Sections {
		if content.IsPlaceholder(sec.HTMLContent) {
			degraded++
			if !strings.Contains(sec.HTMLContent, "Singles in Köln") {
				t.Fatalf("placeholder must contain the title: %s", sec.HTMLContent)
			}
			continue
		}
		if sec.HTMLContent == "" {
			t.Fatalf("section %q is empty", sec.Title)
		}
	}
	if degraded != 1 || len(res.Warnings) != 1 {
		t.Fatalf("expected one degraded section, got %d (warnings %v)", degraded, res.Warnings)
	}
}

func TestPageRecoversPanickingSection(t *testing.T) {
	h := newHarness(t, nil)
	h.writer.panic = func(title string) bool { return strings.HasPrefix(title, "Tipps") }

	res := h.svc.Page(context.Background(), "koeln")
	if res.Kind != KindOk || len(res.Payload.Sections) != 6 {
		t.Fatalf("unexpected result kind=%v sections=%d", res.Kind, len(res.Payload.Sections))
	}
	sec := res.Payload.Sections[4]
	if sec.Title != "Tipps für erfolgreiches Dating in Köln" || !content.IsPlaceholder(sec.HTMLContent) {
		t.Fatalf("unexpected recovered section %+v", sec)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected panic and degradation warnings, got %v", res.Warnings)
	}
}

func TestPageWhenAllImagesFail(t *testing.T) {
	failing := image.NewPixabayProvider(image.PixabayOptions{
		APIKey: "k",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("network down")
		})},
		Logger: infra.NopLogger(),
		Pick:   func(int) int { return 0 },
	})
	h := newHarness(t, func(o *Options) { o.Images = failing })

	res := h.svc.Page(context.Background(), "koeln")
	if res.Kind != KindOk {
		t.Fatalf("expected ok, got %v", res.Kind)
	}
	if diff := cmp.Diff([]string{image.DefaultImages[0], image.DefaultImages[0]}, res.Payload.Images); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
}

func TestPageWithoutImagesSerializesEmptyList(t *testing.T) {
	h := newHarness(t, nil)
	h.images.url = func(string) string { return "" }

	res := h.svc.Page(context.Background(), "koeln")
	if !bytes.Contains(res.Body, []byte(`"images":[]`)) {
		t.Fatalf("expected empty image list in %s", res.Body)
	}
	if strings.Contains(res.Payload.Sections[0].HTMLContent, "<img") {
		t.Fatal("no image should be floated without a second image")
	}
}

func TestPageFloatsSecondImage(t *testing.T) {
	h := newHarness(t, nil)
	res := h.svc.Page(context.Background(), "koeln")
	body := res.Payload.Sections[0].HTMLContent
	for _, want := range []string{
		`<div style="overflow: hidden;">`,
		`src="https://img.example/Köln_city.jpg"`,
		`alt="Leben in Köln"`,
		"<p>Köln: Eine Stadt für Lebensfreude und Begegnungen</p>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in %s", want, body)
		}
	}
	if diff := cmp.Diff([]string{"https://img.example/Köln.jpg", "https://img.example/Köln_city.jpg"}, res.Payload.Images); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
}

type prefixMirror struct{ calls atomic.Int32 }

func (m *prefixMirror) Mirror(ctx context.Context, sourceURL, slug string, index int) string {
	m.calls.Add(1)
	return fmt.Sprintf("https://static.example/%s/%s-%d.jpg", slug, slug, index)
}

func TestPageMirrorsImages(t *testing.T) {
	mirror := &prefixMirror{}
	h := newHarness(t, func(o *Options) { o.Mirror = mirror })
	res := h.svc.Page(context.Background(), "koeln")
	want := []string{"https://static.example/koeln/koeln-1.jpg", "https://static.example/koeln/koeln-2.jpg"}
	if diff := cmp.Diff(want, res.Payload.Images); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
}

func TestPageUnknownCity(t *testing.T) {
	h := newHarness(t, nil)
	res := h.svc.Page(context.Background(), "not-a-real-city")
	if res.Kind != KindNotFound {
		t.Fatalf("expected not found, got %v", res.Kind)
	}
	if res.Payload.CityName != "Not A Real City" {
		t.Fatalf("unexpected fallback city name %q", res.Payload.CityName)
	}
	if len(res.Payload.Sections) != 0 || res.Payload.Sections == nil {
		t.Fatalf("fallback must carry an empty section list, got %#v", res.Payload.Sections)
	}
	if h.writer.calls.Load() != 0 {
		t.Fatal("unknown city must not trigger generation")
	}
}

func TestPageLookupError(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Cities = fakeCities{err: errors.New("db down")} })
	res := h.svc.Page(context.Background(), "koeln")
	if res.Kind != KindError || res.ErrKind != "lookup" {
		t.Fatalf("expected lookup error, got %v %q", res.Kind, res.ErrKind)
	}
}

func TestPageCacheFailuresAreNotEscalated(t *testing.T) {
	cache := &failingCache{getErr: errors.New("read timeout"), putErr: errors.New("write timeout")}
	h := newHarness(t, func(o *Options) { o.Cache = cache })
	res := h.svc.Page(context.Background(), "koeln")
	if res.Kind != KindOk || res.Cached {
		t.Fatalf("expected fresh ok result, got kind=%v cached=%v", res.Kind, res.Cached)
	}
	if cache.puts != 1 {
		t.Fatalf("expected one cache write attempt, got %d", cache.puts)
	}
	var decoded domain.PagePayload
	if err := json.Unmarshal(res.Body, &decoded); err != nil {
		t.Fatalf("body is not valid json: %v", err)
	}
}

func TestGenerateMalformedCity(t *testing.T) {
	cache := &failingCache{}
	h := newHarness(t, func(o *Options) { o.Cache = cache })
	res := h.svc.Generate(context.Background(), domain.City{Name: " ", Slug: "leer"})
	if res.Kind != KindDegraded {
		t.Fatalf("expected degraded, got %v", res.Kind)
	}
	if cache.puts != 0 {
		t.Fatal("minimal fallback must not be cached")
	}
	p := res.Payload
	if p.CityName != "Leer" || len(p.RecommendedSites) != 2 || p.IntroductionHTML == "" {
		t.Fatalf("unexpected minimal payload %+v", p)
	}
	if !bytes.Contains(res.Body, []byte(`"sections":[]`)) || !bytes.Contains(res.Body, []byte(`"images":[]`)) {
		t.Fatalf("minimal payload must serialize empty lists: %s", res.Body)
	}
}

func TestRegenerateBypassesCache(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_ = h.svc.Page(ctx, "koeln")
	res := h.svc.Regenerate(ctx, koeln)
	if res.Cached {
		t.Fatal("regenerate must not serve the cache")
	}
	if h.writer.calls.Load() != 14 {
		t.Fatalf("expected a second generation, writer calls = %d", h.writer.calls.Load())
	}
}

func TestCacheKey(t *testing.T) {
	for in, want := range map[string]string{
		"koeln":     "/singles/koeln",
		" /Koeln/ ": "/singles/koeln",
		"BAD-TÖLZ":  "/singles/bad-tölz",
	} {
		if got := CacheKey(in); got != want {
			t.Errorf("CacheKey(%q) = %q, want %q", in, got, want)
		}
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
