// Package parser builds the outline of a note: frontmatter, title, headings,
// wiki-link targets, tags and embeds.
package parser

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/starford/kyuubi/internal/transform"
)

// Heading is one ATX or setext heading of the body.
type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// Link is a distinct wiki-link target.
type Link struct {
	Target string `json:"target"`
	Anchor string `json:"anchor"`
}

// Outline summarizes a note.
type Outline struct {
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Title       string         `json:"title"`
	Headings    []Heading      `json:"headings"`
	Links       []Link         `json:"links"`
	Tags        []string       `json:"tags"`
	Embeds      []string       `json:"embeds"`
	Body        string         `json:"-"`
}

var md = goldmark.New()

// Inspect parses raw note text. It never fails: malformed frontmatter is
// treated as part of the body.
func Inspect(raw string) *Outline {
	fm, body := splitFrontmatter(raw)

	out := &Outline{
		Frontmatter: fm,
		Body:        body,
		Headings:    extractHeadings(body),
		Links:       []Link{},
		Tags:        []string{},
		Embeds:      []string{},
	}

	seenTag := map[string]struct{}{}
	addTag := func(tag string) {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" {
			return
		}
		if _, dup := seenTag[tag]; dup {
			return
		}
		seenTag[tag] = struct{}{}
		out.Tags = append(out.Tags, tag)
	}
	for _, tag := range frontmatterTags(fm) {
		addTag(tag)
	}

	seenLink := map[string]struct{}{}
	seenEmbed := map[string]struct{}{}
	for _, tok := range transform.Scan(body) {
		target := strings.TrimSpace(tok.Target)
		switch tok.Kind {
		case transform.KindTag:
			addTag(target)
		case transform.KindLink:
			if target == "" {
				continue
			}
			if _, dup := seenLink[target]; dup {
				continue
			}
			seenLink[target] = struct{}{}
			out.Links = append(out.Links, Link{Target: target, Anchor: tok.Anchor})
		case transform.KindEmbed:
			if target == "" {
				continue
			}
			if _, dup := seenEmbed[target]; dup {
				continue
			}
			seenEmbed[target] = struct{}{}
			out.Embeds = append(out.Embeds, target)
		}
	}

	out.Title = deriveTitle(fm, out.Headings)
	return out
}

func splitFrontmatter(raw string) (map[string]any, string) {
	var fm map[string]any
	body, err := frontmatter.Parse(strings.NewReader(raw), &fm)
	if err != nil {
		return nil, raw
	}
	if len(fm) == 0 {
		fm = nil
	}
	return fm, strings.TrimLeft(string(body), "\r\n")
}

func frontmatterTags(fm map[string]any) []string {
	switch v := fm["tags"].(type) {
	case string:
		return strings.Fields(strings.ReplaceAll(v, ",", " "))
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func extractHeadings(body string) []Heading {
	source := []byte(body)
	doc := md.Parser().Parse(text.NewReader(source))

	headings := []Heading{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title := strings.TrimSpace(inlineText(h, source))
		headings = append(headings, Heading{Level: h.Level, Text: title, Anchor: transform.Anchor(title)})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

func inlineText(n ast.Node, source []byte) string {
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
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, headings []Heading) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}
