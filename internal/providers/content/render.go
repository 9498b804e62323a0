package content

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultClasses are the presentation classes added to generated block tags.
var DefaultClasses = map[atom.Atom]string{
	atom.H1: "text-4xl font-bold mb-6",
	atom.H2: "text-3xl font-bold mb-6",
	atom.H3: "text-2xl font-bold mb-4",
	atom.H4: "text-xl font-bold mb-4",
	atom.H5: "text-lg font-bold mb-2",
	atom.H6: "text-base font-bold mb-2",
	atom.P:  "text-lg mb-4",
	atom.Ul: "list-disc pl-6 mb-4",
	atom.Li: "mb-2",
}

// Renderer converts model markdown into class-annotated HTML. Raw HTML in the
// markdown source is dropped by goldmark.
type Renderer struct {
	md      goldmark.Markdown
	classes map[atom.Atom]string
}

// NewRenderer builds a renderer; nil classes selects DefaultClasses.
func NewRenderer(classes map[atom.Atom]string) *Renderer {
	if classes == nil {
		classes = DefaultClasses
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)
	return &Renderer{md: md, classes: classes}
}

// Render converts markdown to HTML and styles the block-level elements.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return r.Style(buf.String())
}

// Style parses an HTML fragment and merges the configured classes into each
// matching element.
func (r *Renderer) Style(fragment string) (string, error) {
	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var out bytes.Buffer
	for _, n := range nodes {
		r.walk(n)
		if err := html.Render(&out, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func (r *Renderer) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if classes, ok := r.classes[n.DataAtom]; ok {
			addClasses(n, classes)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

func addClasses(n *html.Node, classes string) {
	for i, attr := range n.Attr {
		if attr.Namespace != "" || attr.Key != "class" {
			continue
		}
		existing := strings.Fields(attr.Val)
		seen := make(map[string]struct{}, len(existing))
		for _, c := range existing {
			seen[c] = struct{}{}
		}
		for _, c := range strings.Fields(classes) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			existing = append(existing, c)
		}
		n.Attr[i].Val = strings.Join(existing, " ")
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: classes})
}
