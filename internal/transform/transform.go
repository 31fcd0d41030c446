// Package transform rewrites Obsidian-flavored markdown (embeds, wiki-links,
// tags) into standard markdown with inline HTML that any CommonMark renderer
// accepts. Everything here is pure: no I/O, no shared state.
package transform

import (
	"regexp"
	"strings"
)

// whitespace is the character class treated as a token boundary. It matches
// the set browsers use for `\s`, which includes NBSP and the ideographic
// space commonly typed in Japanese text.
const whitespace = `\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

// tagChars is the exact tag body class: ASCII letters, digits, underscore and
// the CJK Unified Ideographs block U+4E00..U+9FA5.
const tagChars = `A-Za-z0-9_\x{4E00}-\x{9FA5}`

var (
	embedRe  = regexp.MustCompile(`!\[\[([^\]]*)\]\]`)
	linkRe   = regexp.MustCompile(`\[\[([^\]]*)\]\]`)
	tagRe    = regexp.MustCompile(`(^|[` + whitespace + `])#([` + tagChars + `]+)`)
	spacesRe = regexp.MustCompile(`[` + whitespace + `]+`)
)

// EmbedLabelPrefix is the visible prefix of an embed placeholder.
const EmbedLabelPrefix = "Embedded: "

// Transform returns renderer-ready markdown for source. Rules run in a fixed
// order: embeds, then wiki-links, then tags, and no rule matches text that
// another rule produced. Fenced code blocks and inline code spans are copied
// through verbatim.
func Transform(source string) string {
	if source == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(source) + len(source)/8)

	for _, seg := range split(source) {
		if seg.code {
			b.WriteString(seg.text)
			continue
		}
		text := seg.text
		visit(text, seg.boundary,
			func(kind Kind, _, _ int, inner string) {
				if kind == KindEmbed {
					b.WriteString(Embed(inner))
				} else {
					b.WriteString(Link(inner))
				}
			},
			func(start, end int, boundary bool) {
				b.WriteString(replaceTags(text[start:end], boundary))
			})
	}
	return b.String()
}

// Anchor normalizes a wiki-link target into a same-document fragment:
// lowercased, with every whitespace run collapsed to a single hyphen.
func Anchor(target string) string {
	return spacesRe.ReplaceAllString(strings.ToLower(target), "-")
}

// SplitLink splits the inside of [[...]] on its first pipe. An absent or
// empty display part falls back to the target.
func SplitLink(inner string) (target, display string) {
	target, display, _ = strings.Cut(inner, "|")
	if display == "" {
		display = target
	}
	return target, display
}

// Embed returns the placeholder for ![[target]]. The destination is an inert
// fragment so the output never triggers a resource fetch of the target.
func Embed(target string) string {
	return "![" + EmbedLabelPrefix + target + "](#)"
}

// Link returns the standard inline link for [[inner]].
func Link(inner string) string {
	target, display := SplitLink(inner)
	return "[" + display + "](#" + Anchor(target) + ")"
}

// visit walks prose text s in order. Embeds are matched first, wiki-links in
// the text between embeds, and gap receives what is left between them. Only
// gaps are open to the tag rule, so no rule sees text another rule produced.
// boundary tells gap whether its start counts as start-of-text.
func visit(s string, boundary bool, construct func(kind Kind, start, end int, inner string), gap func(start, end int, boundary bool)) {
	last := 0
	for _, m := range embedRe.FindAllStringSubmatchIndex(s, -1) {
		visitLinks(s, last, m[0], boundary && last == 0, construct, gap)
		construct(KindEmbed, m[0], m[1], s[m[2]:m[3]])
		last = m[1]
	}
	visitLinks(s, last, len(s), boundary && last == 0, construct, gap)
}

func visitLinks(s string, from, to int, boundary bool, construct func(Kind, int, int, string), gap func(int, int, bool)) {
	last := from
	for _, m := range linkRe.FindAllStringSubmatchIndex(s[from:to], -1) {
		start, end := from+m[0], from+m[1]
		gap(last, start, boundary && last == from)
		construct(KindLink, start, end, s[from+m[2]:from+m[3]])
		last = end
	}
	gap(last, to, boundary && last == from)
}

// replaceTags wraps qualifying tags in the tag marker. boundary reports
// whether the start of s counts as start-of-text; it is false when s
// directly follows a code span that does not end in whitespace.
func replaceTags(s string, boundary bool) string {
	if s == "" || !strings.Contains(s, "#") {
		return s
	}
	matches := tagRe.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(matches)*(len(TagOpen)+len(TagClose)))
	last := 0
	for _, m := range matches {
		// m[2]:m[3] is the leading boundary, m[4]:m[5] the tag body.
		if m[0] == 0 && m[3] == 0 && !boundary {
			continue
		}
		b.WriteString(s[last:m[3]])
		b.WriteString(WrapTag("#" + s[m[4]:m[5]]))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
