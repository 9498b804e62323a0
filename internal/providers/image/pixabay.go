package image

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Pixabay rejects per_page values below 3.
const minPixabayPerPage = 3

const pixabayDefaultTimeout = 15 * time.Second

type PixabayOptions struct {
	APIKey     string
	BaseURL    string
	PerPage    int
	HTTPClient *http.Client
	Logger     zerolog.Logger
	// Defaults overrides DefaultImages.
	Defaults []string
	// Pick returns an index in [0, n); it defaults to math/rand/v2.
	Pick func(n int) int
}

// PixabayProvider searches the Pixabay image API.
type PixabayProvider struct {
	apiKey   string
	baseURL  string
	perPage  int
	client   *http.Client
	logger   zerolog.Logger
	defaults []string
	pick     func(n int) int
}

type pixabayResponse struct {
	Hits []struct {
		LargeImageURL string `json:"largeImageURL"`
	} `json:"hits"`
}

func NewPixabayProvider(opts PixabayOptions) *PixabayProvider {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = "https://pixabay.com/api/"
	}
	perPage := opts.PerPage
	if perPage < minPixabayPerPage {
		perPage = minPixabayPerPage
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: pixabayDefaultTimeout}
	}
	defaults := opts.Defaults
	if len(defaults) == 0 {
		defaults = DefaultImages
	}
	pick := opts.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return &PixabayProvider{
		apiKey:   strings.TrimSpace(opts.APIKey),
		baseURL:  baseURL,
		perPage:  perPage,
		client:   client,
		logger:   opts.Logger,
		defaults: defaults,
		pick:     pick,
	}
}

func (p *PixabayProvider) FetchImage(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if p.apiKey == "" {
		return p.fallback(query, "missing_api_key", nil)
	}
	if query == "" {
		return p.fallback(query, "empty_query", nil)
	}
	endpoint, err := p.endpoint(query)
	if err != nil {
		return p.fallback(query, "build_url", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return p.fallback(query, "build_request", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return p.fallback(query, "http_request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return p.fallback(query, fmt.Sprintf("http_%d", resp.StatusCode), nil)
	}
	var out pixabayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return p.fallback(query, "decode_response", err)
	}
	if len(out.Hits) == 0 {
		return p.fallback(query, "no_hits", nil)
	}
	link := strings.TrimSpace(out.Hits[0].LargeImageURL)
	if link == "" {
		return p.fallback(query, "empty_url", nil)
	}
	return link
}

func (p *PixabayProvider) endpoint(query string) (string, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("key", p.apiKey)
	q.Set("q", query)
	q.Set("image_type", "photo")
	q.Set("per_page", strconv.Itoa(p.perPage))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *PixabayProvider) fallback(query, reason string, err error) string {
	p.logger.Warn().Err(err).Str("query", query).Str("reason", reason).Msg("image search fell back to default")
	idx := p.pick(len(p.defaults))
	if idx < 0 || idx >= len(p.defaults) {
		idx = 0
	}
	return p.defaults[idx]
}

var _ Provider = (*PixabayProvider)(nil)
