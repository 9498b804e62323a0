package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	Temperature  *float64
	MaxTokens    int
	HTTPClient   *http.Client
	Fallback     Completer
	OnFallback   func(reason string, err error)
}

// OpenAIClient calls the chat completions endpoint.
type OpenAIClient struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	temperature  float64
	maxTokens    int
	client       *http.Client
	fallback     Completer
	onFallback   func(reason string, err error)
}

const (
	openAIDefaultTimeout = 60 * time.Second
	defaultOpenAIModel   = "gpt-4o-mini"
)

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient builds a client. A blank API key is accepted; calls then go
// straight to the fallback or fail with a provider error.
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	temperature := resolveTemperature(opts.Temperature)
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIClient{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        coalesce(opts.Model, defaultOpenAIModel),
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		temperature:  temperature,
		maxTokens:    maxTokens,
		client:       client,
		fallback:     opts.Fallback,
		onFallback:   opts.OnFallback,
	}
}

func (o *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if o.apiKey == "" {
		return o.useFallback(ctx, system, prompt, "missing_api_key", nil)
	}
	payload := openAIChatRequest{
		Model:       o.model,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return o.useFallback(ctx, system, prompt, "encode_request", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return o.useFallback(ctx, system, prompt, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return o.useFallback(ctx, system, prompt, "http_request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return o.useFallback(ctx, system, prompt, fmt.Sprintf("http_%d", resp.StatusCode),
			fmt.Errorf("openai status %d: %s", resp.StatusCode, readExcerpt(resp.Body)))
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return o.useFallback(ctx, system, prompt, "decode_response", err)
	}
	if len(out.Choices) == 0 {
		return o.useFallback(ctx, system, prompt, "empty_choices", errors.New("no choices"))
	}
	text := trimCodeFence(out.Choices[0].Message.Content)
	if text == "" {
		return o.useFallback(ctx, system, prompt, "empty_response", errors.New("empty response"))
	}
	return text, nil
}

func (o *OpenAIClient) useFallback(ctx context.Context, system, prompt, reason string, cause error) (string, error) {
	if o.onFallback != nil {
		o.onFallback(reason, cause)
	}
	if o.fallback != nil {
		return o.fallback.Complete(ctx, system, prompt)
	}
	return "", providerError(openAIProviderName, reason, cause)
}

var _ Completer = (*OpenAIClient)(nil)
