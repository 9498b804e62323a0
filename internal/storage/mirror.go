package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"singlepages/internal/domain"
)

const (
	mirrorDefaultTimeout  = 20 * time.Second
	mirrorDefaultMaxBytes = 10 << 20
)

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "webp": {}, "gif": {},
}

type MirrorOptions struct {
	Store      *FileStore
	BaseURL    string
	HTTPClient *http.Client
	MaxBytes   int64
	Logger     zerolog.Logger
}

// ImageMirror copies remote images into a FileStore so pages do not hotlink
// the stock photo provider.
type ImageMirror struct {
	store    *FileStore
	baseURL  string
	client   *http.Client
	maxBytes int64
	logger   zerolog.Logger
}

func NewImageMirror(opts MirrorOptions) *ImageMirror {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: mirrorDefaultTimeout}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = mirrorDefaultMaxBytes
	}
	return &ImageMirror{
		store:    opts.Store,
		baseURL:  strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		client:   client,
		maxBytes: maxBytes,
		logger:   opts.Logger,
	}
}

// Mirror stores sourceURL as <slug>/<slug>-<index>.<ext>, replacing any
// earlier image at that key, and returns its public URL. Any failure returns
// sourceURL unchanged and leaves the stored file as it was.
func (m *ImageMirror) Mirror(ctx context.Context, sourceURL, slug string, index int) string {
	if m == nil || m.store == nil {
		return sourceURL
	}
	key, err := ImageKey(sourceURL, slug, index)
	if err != nil {
		m.logger.Warn().Err(err).Str("slug", slug).Msg("image mirror skipped")
		return sourceURL
	}
	data, err := m.download(ctx, sourceURL)
	if err != nil {
		m.logger.Warn().Err(err).Str("slug", slug).Str("source", sourceURL).Msg("image download failed")
		return sourceURL
	}
	stored, err := m.store.Write(ctx, key, data)
	if err != nil {
		m.logger.Error().Err(err).Str("slug", slug).Str("key", key).Msg("image store failed")
		return sourceURL
	}
	return m.publicURL(stored)
}

func (m *ImageMirror) download(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, m.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > m.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", m.maxBytes)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyContent
	}
	return data, nil
}

func (m *ImageMirror) publicURL(key string) string {
	return m.baseURL + "/" + key
}

// ImageKey derives the storage key for the index-th image of a city.
func ImageKey(sourceURL, slug string, index int) (string, error) {
	slug = safeSlug(slug)
	if slug == "" {
		return "", ErrInvalidKey
	}
	return fmt.Sprintf("%s/%s-%d.%s", slug, slug, index, extensionOf(sourceURL)), nil
}

func extensionOf(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "jpg"
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if _, ok := imageExtensions[ext]; !ok {
		return "jpg"
	}
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

func safeSlug(slug string) string {
	slug = domain.NormalizeSlug(slug)
	var b strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
