package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"singlepages/internal/adapter/memcache"
	"singlepages/internal/adapter/repo"
	"singlepages/internal/domain"
	"singlepages/internal/infra"
)

func newProviderServers(t *testing.T) (openai, gemini *httptest.Server, openaiCalls, geminiCalls *int32) {
	t.Helper()
	openaiCalls, geminiCalls = new(int32), new(int32)
	openai = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(openaiCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"from openai"}}]}`))
	}))
	gemini = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(geminiCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"from gemini"}]}}]}`))
	}))
	t.Cleanup(openai.Close)
	t.Cleanup(gemini.Close)
	return openai, gemini, openaiCalls, geminiCalls
}

func testConfig(provider, openaiURL, geminiURL string) *infra.Config {
	return &infra.Config{
		ContentProvider: provider,
		OpenAIBaseURL:   openaiURL,
		OpenAIModel:     "gpt-4o-mini",
		OpenAITimeout:   5,
		GeminiBaseURL:   geminiURL,
		GeminiModel:     "gemini-1.5-flash",
		CacheTTLMonths:  6,
	}
}

func TestNewCompleterSelectsProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		keys     Keys
		want     string
		wantErr  bool
	}{
		{name: "openai primary", provider: "openai", keys: Keys{OpenAI: "sk", Gemini: "g"}, want: "from openai"},
		{name: "gemini primary", provider: "gemini", keys: Keys{OpenAI: "sk", Gemini: "g"}, want: "from gemini"},
		{name: "openai without key uses gemini", provider: "openai", keys: Keys{Gemini: "g"}, want: "from gemini"},
		{name: "gemini without key uses openai", provider: "gemini", keys: Keys{OpenAI: "sk"}, want: "from openai"},
		{name: "no keys", provider: "openai", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			openai, gemini, _, _ := newProviderServers(t)
			completer := NewCompleter(testConfig(tc.provider, openai.URL, gemini.URL), tc.keys, infra.NopLogger())
			got, err := completer.Complete(context.Background(), "sys", "prompt")
			if tc.wantErr {
				if !errors.Is(err, domain.ErrProviderFailed) {
					t.Fatalf("expected provider error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Complete error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Complete() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewCompleterPrimaryOnlyCalledOnce(t *testing.T) {
	openai, gemini, openaiCalls, geminiCalls := newProviderServers(t)
	completer := NewCompleter(testConfig("openai", openai.URL, gemini.URL), Keys{OpenAI: "sk", Gemini: "g"}, infra.NopLogger())
	if _, err := completer.Complete(context.Background(), "sys", "prompt"); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if atomic.LoadInt32(openaiCalls) != 1 || atomic.LoadInt32(geminiCalls) != 0 {
		t.Fatalf("unexpected calls openai=%d gemini=%d", *openaiCalls, *geminiCalls)
	}
}

func TestNewPageCache(t *testing.T) {
	cfg := testConfig("openai", "", "")

	cfg.CacheMemoryEnabled = true
	if _, ok := NewPageCache(cfg, nil).(*memcache.Layered); !ok {
		t.Fatal("expected layered cache when memory cache is enabled")
	}

	cfg.CacheMemoryEnabled = false
	if _, ok := NewPageCache(cfg, nil).(*repo.PageCacheRepositoryPG); !ok {
		t.Fatal("expected postgres cache when memory cache is disabled")
	}
}

func TestResolveKeysPrefersEnvironment(t *testing.T) {
	cfg := &infra.Config{OpenAIAPIKey: " sk-env ", PixabayAPIKey: "px"}
	keys := ResolveKeys(context.Background(), cfg, nil, infra.NopLogger())
	if keys.OpenAI != "sk-env" || keys.Pixabay != "px" || keys.Gemini != "" {
		t.Fatalf("unexpected keys %+v", keys)
	}
}

func TestOpenFileStoreMakesPathAbsolute(t *testing.T) {
	dir := t.TempDir()
	store, err := openFileStore(dir)
	if err != nil {
		t.Fatalf("openFileStore error: %v", err)
	}
	if !filepath.IsAbs(store.BasePath()) {
		t.Fatalf("expected absolute base path, got %q", store.BasePath())
	}
}
