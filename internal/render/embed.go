package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/kyuubi/internal/transform"
)

// EmbedClass is the class of a rendered embed placeholder.
const EmbedClass = "embed"

// KindEmbedPlaceholder is the node kind of EmbedPlaceholder.
var KindEmbedPlaceholder = ast.NewNodeKind("EmbedPlaceholder")

// EmbedPlaceholder stands in for an embed. The target is shown as text and
// never fetched.
type EmbedPlaceholder struct {
	ast.BaseInline
	Target string
}

// Kind implements ast.Node.
func (n *EmbedPlaceholder) Kind() ast.NodeKind { return KindEmbedPlaceholder }

// Dump implements ast.Node.
func (n *EmbedPlaceholder) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Target": n.Target}, nil)
}

// Label is the visible text of the placeholder.
func (n *EmbedPlaceholder) Label() string {
	return transform.EmbedLabelPrefix + n.Target
}

// EmbedPlaceholders is a goldmark extension that renders the images produced
// for embeds (an "Embedded: " label pointing at "#") as a labelled span.
// An <img> with an inert source would not survive sanitizing.
type EmbedPlaceholders struct{}

// Extend implements goldmark.Extender.
func (e *EmbedPlaceholders) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&embedTransformer{}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&embedRenderer{}, 100),
	))
}

type embedTransformer struct{}

func (t *embedTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var images []*ast.Image
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := node.(*ast.Image); ok && string(img.Destination) == "#" {
			images = append(images, img)
		}
		return ast.WalkContinue, nil
	})

	for _, img := range images {
		label := plainText(img, source)
		target, ok := strings.CutPrefix(label, transform.EmbedLabelPrefix)
		if !ok {
			continue
		}
		parent := img.Parent()
		parent.ReplaceChild(parent, img, &EmbedPlaceholder{Target: target})
	}
}

type embedRenderer struct{}

func (r *embedRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindEmbedPlaceholder, r.renderEmbed)
}

func (r *embedRenderer) renderEmbed(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*EmbedPlaceholder)
	_, _ = w.WriteString(`<span class="` + EmbedClass + `">`)
	_, _ = w.Write(util.EscapeHTML([]byte(n.Label())))
	_, _ = w.WriteString(`</span>`)
	return ast.WalkSkipChildren, nil
}

// plainText concatenates the text below n. Tag badges and embed
// placeholders contribute their labels; raw HTML is dropped.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		case *TagBadge:
			buf.WriteString(v.Label)
		case *EmbedPlaceholder:
			buf.WriteString(v.Label())
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
