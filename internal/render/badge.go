package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/kyuubi/internal/transform"
)

// BadgeClass is the class list of a rendered tag. It keeps the marker class
// so plain styling still applies and adds the pill styling hook.
const BadgeClass = transform.TagClass + " tag-badge"

// KindTagBadge is the node kind of TagBadge.
var KindTagBadge = ast.NewNodeKind("TagBadge")

// TagBadge is an inline node for one tag marker found in the document.
type TagBadge struct {
	ast.BaseInline
	Label string // "#body"
}

// Kind implements ast.Node.
func (n *TagBadge) Kind() ast.NodeKind { return KindTagBadge }

// Dump implements ast.Node.
func (n *TagBadge) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Label": n.Label}, nil)
}

// TagBadges is a goldmark extension that renders tag markers as badges.
// Markers it cannot recognize are left to the default raw HTML renderer.
type TagBadges struct{}

// Extend implements goldmark.Extender.
func (e *TagBadges) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&badgeTransformer{}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&badgeRenderer{}, 100),
	))
}

// badgeTransformer replaces the sibling run RawHTML(TagOpen), Text...,
// RawHTML(TagClose) with a single TagBadge.
type badgeTransformer struct{}

func (t *badgeTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	// Collect first, then rewrite, so the walk never sees a mutated tree.
	var opens []*ast.RawHTML
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if raw, ok := node.(*ast.RawHTML); ok && rawText(raw, source) == transform.TagOpen {
			opens = append(opens, raw)
		}
		return ast.WalkContinue, nil
	})

	for _, open := range opens {
		replaceMarker(open, source)
	}
}

func replaceMarker(open *ast.RawHTML, source []byte) {
	parent := open.Parent()
	if parent == nil {
		return
	}

	var label bytes.Buffer
	var texts []ast.Node
	for n := open.NextSibling(); n != nil; n = n.NextSibling() {
		switch v := n.(type) {
		case *ast.Text:
			if v.SoftLineBreak() || v.HardLineBreak() {
				return
			}
			label.Write(v.Segment.Value(source))
			texts = append(texts, v)
		case *ast.RawHTML:
			if rawText(v, source) != transform.TagClose || !transform.IsTagLabel(label.String()) {
				return
			}
			parent.InsertBefore(parent, open, &TagBadge{Label: label.String()})
			parent.RemoveChild(parent, open)
			for _, t := range texts {
				parent.RemoveChild(parent, t)
			}
			parent.RemoveChild(parent, v)
			return
		default:
			return
		}
	}
}

func rawText(n *ast.RawHTML, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

type badgeRenderer struct{}

func (r *badgeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTagBadge, r.renderTagBadge)
}

func (r *badgeRenderer) renderTagBadge(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*TagBadge)
	_, _ = w.WriteString(`<span class="` + BadgeClass + `">`)
	_, _ = w.Write(util.EscapeHTML([]byte(n.Label)))
	_, _ = w.WriteString(`</span>`)
	return ast.WalkSkipChildren, nil
}
