// Package content turns section prompts into styled HTML through a
// text-generation API.
package content

import (
	"context"
	"fmt"
	"io"
	"strings"

	"singlepages/internal/domain"
)

// SystemInstruction is sent with every section prompt.
const SystemInstruction = "You are a helpful dating assistant that generates SEO optimized content for dating websites in German language. " +
	"Always use markdown formatting for better readability. " +
	"Use short paragraphs with a maximum of 120 words per paragraph."

const (
	openAIProviderName = "openai"
	geminiProviderName = "gemini"

	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
	errorBodyLimit     = 512
)

// resolveTemperature returns t, or the default when t is nil or negative.
// Zero is a valid deterministic setting.
func resolveTemperature(t *float64) float64 {
	if t == nil || *t < 0 {
		return defaultTemperature
	}
	return *t
}

// Completer produces a single text completion for a system instruction and a
// user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, system, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

func providerError(provider, reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s %s", domain.ErrProviderFailed, provider, reason)
	}
	return fmt.Errorf("%w: %s %s: %v", domain.ErrProviderFailed, provider, reason, err)
}

func readExcerpt(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	return strings.TrimSpace(string(raw))
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

// trimCodeFence strips a ```markdown fence some models wrap their answer in.
func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 && !strings.ContainsAny(trimmed[:nl], " \t") {
		trimmed = trimmed[nl+1:]
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
