package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type GeminiOptions struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxTokens   int
	HTTPClient  *http.Client
	Fallback    Completer
	OnFallback  func(reason string, err error)
}

// GeminiClient calls the generateContent endpoint of the Gemini API.
type GeminiClient struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *http.Client
	fallback    Completer
	onFallback  func(reason string, err error)
}

const geminiDefaultTimeout = 60 * time.Second

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	CandidateCount  int     `json:"candidateCount,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiClient(opts GeminiOptions) *GeminiClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	temperature := resolveTemperature(opts.Temperature)
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiClient{
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       coalesce(opts.Model, "gemini-1.5-flash"),
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      client,
		fallback:    opts.Fallback,
		onFallback:  opts.OnFallback,
	}
}

func (g *GeminiClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if g.apiKey == "" {
		return g.useFallback(ctx, system, prompt, "missing_api_key", nil)
	}
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.temperature,
			CandidateCount:  1,
			MaxOutputTokens: g.maxTokens,
		},
	}
	if strings.TrimSpace(system) != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return g.useFallback(ctx, system, prompt, "encode_request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return g.useFallback(ctx, system, prompt, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return g.useFallback(ctx, system, prompt, "http_request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return g.useFallback(ctx, system, prompt, fmt.Sprintf("http_%d", resp.StatusCode),
			fmt.Errorf("gemini status %d: %s", resp.StatusCode, readExcerpt(resp.Body)))
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return g.useFallback(ctx, system, prompt, "decode_response", err)
	}
	text := trimCodeFence(extractText(out))
	if text == "" {
		return g.useFallback(ctx, system, prompt, "empty_response", errors.New("empty response"))
	}
	return text, nil
}

func (g *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func extractText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func (g *GeminiClient) useFallback(ctx context.Context, system, prompt, reason string, cause error) (string, error) {
	if g.onFallback != nil {
		g.onFallback(reason, cause)
	}
	if g.fallback != nil {
		return g.fallback.Complete(ctx, system, prompt)
	}
	return "", providerError(geminiProviderName, reason, cause)
}

var _ Completer = (*GeminiClient)(nil)
