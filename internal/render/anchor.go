package render

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/kyuubi/internal/transform"
)

// HeadingAnchors is a goldmark extension that gives every heading the id a
// wiki-link to its text points at: transform.Anchor of the heading's plain
// text, so [[Title #tag]] lands on "# Title #tag". Repeated ids get a
// numeric suffix.
type HeadingAnchors struct{}

// Extend implements goldmark.Extender.
func (e *HeadingAnchors) Extend(m goldmark.Markdown) {
	// Runs after the badge and embed transformers so their labels count.
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&anchorTransformer{}, 200),
	))
}

type anchorTransformer struct{}

func (t *anchorTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	used := map[string]bool{}

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		h.SetAttributeString("id", []byte(uniqueID(headingID(plainText(h, source)), used)))
		return ast.WalkSkipChildren, nil
	})
}

func headingID(title string) string {
	id := transform.Anchor(strings.TrimSpace(title))
	if id == "" {
		return "heading"
	}
	return id
}

func uniqueID(id string, used map[string]bool) string {
	candidate := id
	for i := 1; used[candidate]; i++ {
		candidate = id + "-" + strconv.Itoa(i)
	}
	used[candidate] = true
	return candidate
}
