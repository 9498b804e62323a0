package content

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"singlepages/internal/domain"
)

type WriterOptions struct {
	Completer Completer
	Renderer  *Renderer
	System    string
	Logger    zerolog.Logger
}

// Writer generates one page section per call. It never fails; problems are
// rendered into the section as a visible placeholder.
type Writer struct {
	completer Completer
	renderer  *Renderer
	system    string
	logger    zerolog.Logger
}

func NewWriter(opts WriterOptions) *Writer {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewRenderer(nil)
	}
	return &Writer{
		completer: opts.Completer,
		renderer:  renderer,
		system:    coalesce(opts.System, SystemInstruction),
		logger:    opts.Logger,
	}
}

// Generate renders section for the city in data.
func (w *Writer) Generate(ctx context.Context, section domain.Section, data PromptData) domain.GeneratedSection {
	title, err := RenderTemplate("title", section.Title, data)
	if err != nil {
		title = section.Title
		return w.degraded(data, title, err)
	}
	title = strings.TrimSpace(title)
	prompt, err := RenderTemplate("prompt", section.PromptTemplate, data)
	if err != nil {
		return w.degraded(data, title, err)
	}
	if w.completer == nil {
		return w.degraded(data, title, fmt.Errorf("%w: no content provider configured", domain.ErrProviderFailed))
	}
	markdown, err := w.completer.Complete(ctx, w.system, prompt)
	if err != nil {
		return w.degraded(data, title, err)
	}
	if strings.TrimSpace(markdown) == "" {
		return w.degraded(data, title, domain.ErrEmptyContent)
	}
	body, err := w.renderer.Render(markdown)
	if err != nil {
		return w.degraded(data, title, err)
	}
	if body == "" {
		return w.degraded(data, title, domain.ErrEmptyContent)
	}
	return domain.GeneratedSection{Title: title, HTMLContent: body}
}

func (w *Writer) degraded(data PromptData, title string, err error) domain.GeneratedSection {
	w.logger.Warn().Err(err).Str("slug", data.Slug).Str("section", title).Msg("section generation failed")
	return domain.GeneratedSection{Title: title, HTMLContent: Placeholder(title, err)}
}

// Placeholder is the inline notice shown in place of a section that could
// not be generated.
func Placeholder(title string, err error) string {
	if err == nil {
		err = errors.New("unbekannter Fehler")
	}
	return fmt.Sprintf(`<p class="text-red-500">Fehler beim Generieren von „%s“: %s</p>`,
		html.EscapeString(title), html.EscapeString(err.Error()))
}

// IsPlaceholder reports whether htmlContent was produced by Placeholder.
func IsPlaceholder(htmlContent string) bool {
	return strings.HasPrefix(htmlContent, `<p class="text-red-500">Fehler beim Generieren von`)
}
