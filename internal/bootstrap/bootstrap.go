// Package bootstrap wires configuration into the page service graph shared by
// the API server and pagectl.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"singlepages/internal/adapter/memcache"
	"singlepages/internal/adapter/repo"
	"singlepages/internal/domain"
	"singlepages/internal/infra"
	"singlepages/internal/infra/credentials"
	"singlepages/internal/pages"
	"singlepages/internal/providers/content"
	"singlepages/internal/providers/image"
	"singlepages/internal/storage"
)

// Deps is the assembled service graph. Close releases the database pool.
type Deps struct {
	Config *infra.Config
	Logger infra.Logger
	Pool   *pgxpool.Pool
	SQL    *infra.SQLRunner
	Cities *repo.CityRepositoryPG
	Creds  *credentials.Store
	Pages  *pages.Service
	// Files is nil when STORAGE_PATH is unset.
	Files *storage.FileStore
}

func (d *Deps) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

// Keys are the resolved provider API keys.
type Keys struct {
	OpenAI  string
	Gemini  string
	Pixabay string
}

// Open connects to the database and builds every adapter described by cfg.
func Open(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Deps, error) {
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	runner := infra.NewSQLRunner(pool, logger)
	deps := &Deps{
		Config: cfg,
		Logger: logger,
		Pool:   pool,
		SQL:    runner,
		Cities: repo.NewCityRepository(runner),
		Creds:  credentials.NewStore(runner),
	}

	keys := ResolveKeys(ctx, cfg, deps.Creds, logger)
	if keys.Pixabay == "" {
		logger.Warn().Msg("pixabay api key missing, pages use default images")
	}

	var mirror pages.ImageMirror
	if strings.TrimSpace(cfg.StoragePath) != "" {
		deps.Files, err = openFileStore(cfg.StoragePath)
		if err != nil {
			pool.Close()
			return nil, err
		}
		mirror = storage.NewImageMirror(storage.MirrorOptions{
			Store:   deps.Files,
			BaseURL: cfg.StorageBaseURL,
			Logger:  logger.With().Str("component", "mirror").Logger(),
		})
	}

	svc, err := pages.NewService(pages.Options{
		Cities: deps.Cities,
		Cache:  NewPageCache(cfg, runner),
		Writer: content.NewWriter(content.WriterOptions{
			Completer: NewCompleter(cfg, keys, logger),
			Logger:    logger.With().Str("component", "writer").Logger(),
		}),
		Images: image.NewPixabayProvider(image.PixabayOptions{
			APIKey:     keys.Pixabay,
			BaseURL:    cfg.PixabayBaseURL,
			HTTPClient: &http.Client{Timeout: cfg.PixabayHTTPTimeout()},
			Logger:     logger.With().Str("component", "pixabay").Logger(),
		}),
		Mirror:      mirror,
		TTL:         domain.TTL{Months: cfg.CacheTTLMonths},
		SiteBaseURL: cfg.SiteBaseURL,
		Logger:      logger.With().Str("component", "pages").Logger(),
	})
	if err != nil {
		pool.Close()
		return nil, err
	}
	deps.Pages = svc
	return deps, nil
}

// ResolveKeys prefers keys from the environment and falls back to the
// integration_tokens table. Lookup failures are logged and leave the key blank.
func ResolveKeys(ctx context.Context, cfg *infra.Config, store *credentials.Store, logger infra.Logger) Keys {
	resolve := func(provider, explicit string) string {
		key, err := store.Resolve(ctx, provider, explicit)
		if err != nil {
			logger.Warn().Err(err).Str("provider", provider).Msg("failed to load api key from store")
			return ""
		}
		return key
	}
	return Keys{
		OpenAI:  resolve(credentials.ProviderOpenAI, cfg.OpenAIAPIKey),
		Gemini:  resolve(credentials.ProviderGemini, cfg.GeminiAPIKey),
		Pixabay: resolve(credentials.ProviderPixabay, cfg.PixabayAPIKey),
	}
}

// NewCompleter returns the configured content provider. The other provider
// serves as fallback when it has a key.
func NewCompleter(cfg *infra.Config, keys Keys, logger infra.Logger) content.Completer {
	client := &http.Client{Timeout: cfg.OpenAIHTTPTimeout()}
	onFallback := func(provider string) func(reason string, err error) {
		return func(reason string, err error) {
			logger.Warn().Err(err).Str("provider", provider).Str("reason", reason).Msg("content provider fallback")
		}
	}

	var openaiFallback, geminiFallback content.Completer
	if cfg.ContentProvider == credentials.ProviderOpenAI && keys.Gemini != "" {
		geminiFallback = content.NewGeminiClient(content.GeminiOptions{
			APIKey:     keys.Gemini,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: client,
		})
	}
	if cfg.ContentProvider == credentials.ProviderGemini && keys.OpenAI != "" {
		openaiFallback = content.NewOpenAIClient(content.OpenAIOptions{
			APIKey:       keys.OpenAI,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   client,
		})
	}

	if cfg.ContentProvider == credentials.ProviderGemini {
		if keys.Gemini == "" && openaiFallback == nil {
			logger.Warn().Msg("gemini api key missing, sections render as placeholders")
		}
		return content.NewGeminiClient(content.GeminiOptions{
			APIKey:     keys.Gemini,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: client,
			Fallback:   openaiFallback,
			OnFallback: onFallback(credentials.ProviderGemini),
		})
	}
	if keys.OpenAI == "" && geminiFallback == nil {
		logger.Warn().Msg("openai api key missing, sections render as placeholders")
	}
	return content.NewOpenAIClient(content.OpenAIOptions{
		APIKey:       keys.OpenAI,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		HTTPClient:   client,
		Fallback:     geminiFallback,
		OnFallback:   onFallback(credentials.ProviderOpenAI),
	})
}

// NewPageCache returns the Postgres cache, fronted by process memory when
// CACHE_MEMORY_ENABLED is set.
func NewPageCache(cfg *infra.Config, sql infra.SQLExecutor) domain.PageCache {
	durable := repo.NewPageCacheRepository(sql)
	if !cfg.CacheMemoryEnabled {
		return durable
	}
	return memcache.NewLayered(memcache.New(memcache.Options{}), durable)
}

func openFileStore(path string) (*storage.FileStore, error) {
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	store, err := storage.NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("configure storage: %w", err)
	}
	return store, nil
}
