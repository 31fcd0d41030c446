// Package render turns transformed markdown into preview HTML. It is the
// only consumer of the transform package's tag marker.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// DefaultHighlightStyle is the chroma style used when none is configured.
const DefaultHighlightStyle = "github"

// Options configures a Renderer.
type Options struct {
	// Extensions names the goldmark extensions to enable. Empty selects
	// DefaultExtensions. Unknown names are ignored.
	Extensions     []string
	HardWraps      bool
	Sanitize       bool
	HighlightStyle string
}

// DefaultExtensions is the extension set used when Options.Extensions is empty.
var DefaultExtensions = []string{"gfm", "footnote", "math", "highlight"}

// Renderer converts markdown to sanitized HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a Renderer. Unsafe HTML is always enabled in goldmark so tag
// markers survive; Options.Sanitize scrubs the result afterwards.
func New(opts Options) *Renderer {
	exts := append(collectExtensions(opts), &TagBadges{}, &EmbedPlaceholders{}, &HeadingAnchors{})

	rendererOptions := []renderer.Option{gmhtml.WithUnsafe()}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, gmhtml.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(rendererOptions...),
	)

	r := &Renderer{md: md}
	if opts.Sanitize {
		r.policy = newPolicy()
	}
	return r
}

// Render converts markdown into HTML.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render: convert: %w", err)
	}
	if r.policy == nil {
		return buf.String(), nil
	}
	return r.policy.SanitizeReader(&buf).String(), nil
}

// Fallback is the preview shown when rendering fails: the markdown itself,
// escaped, in a preformatted block.
func Fallback(markdown string) string {
	return "<pre>" + html.EscapeString(markdown) + "</pre>"
}

type extensionFactory func(Options) goldmark.Extender

var extensionRegistry = map[string]extensionFactory{
	"gfm":           fixed(extension.GFM),
	"table":         fixed(extension.Table),
	"tables":        fixed(extension.Table),
	"strikethrough": fixed(extension.Strikethrough),
	"linkify":       fixed(extension.Linkify),
	"autolink":      fixed(extension.Linkify),
	"tasklist":      fixed(extension.TaskList),
	"definition":    fixed(extension.DefinitionList),
	"footnote":      fixed(extension.Footnote),
	"math":          fixed(mathjax.MathJax),
	"emoji":         fixed(emoji.Emoji),
	"highlight": func(opts Options) goldmark.Extender {
		return highlighting.NewHighlighting(
			highlighting.WithStyle(highlightStyle(opts)),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		)
	},
}

func fixed(ext goldmark.Extender) extensionFactory {
	return func(Options) goldmark.Extender { return ext }
}

// KnownExtension reports whether name is in the extension registry.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func collectExtensions(opts Options) []goldmark.Extender {
	names := opts.Extensions
	if len(names) == 0 {
		names = DefaultExtensions
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		factory, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, factory(opts))
		seen[key] = struct{}{}
	}
	return extenders
}

func highlightStyle(opts Options) string {
	if opts.HighlightStyle == "" {
		return DefaultHighlightStyle
	}
	return opts.HighlightStyle
}

// StyleSheet returns the CSS for the chroma classes emitted by the
// highlight extension.
func StyleSheet(style string) (string, error) {
	if style == "" {
		style = DefaultHighlightStyle
	}
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(style)); err != nil {
		return "", fmt.Errorf("render: write css: %w", err)
	}
	return buf.String(), nil
}
