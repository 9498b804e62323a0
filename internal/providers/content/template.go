package content

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// PromptData is the city context available to section title and prompt templates.
type PromptData struct {
	City   string
	Region string
	Slug   string
	Year   int
}

// RenderTemplate executes a text/template source with the sprig function set.
func RenderTemplate(name, src string, data PromptData) (string, error) {
	t, err := template.New(name).Funcs(sprig.FuncMap()).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("invalid template %q: %w", name, err)
	}
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, data); err != nil {
		return "", fmt.Errorf("rendering template %q: %w", name, err)
	}
	return buf.String(), nil
}
