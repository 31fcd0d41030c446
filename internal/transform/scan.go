package transform

// Kind identifies an extension construct.
type Kind string

const (
	KindEmbed Kind = "embed"
	KindLink  Kind = "link"
	KindTag   Kind = "tag"
)

// Token is one extension construct found in raw text. Start and End are
// byte offsets into the scanned source.
type Token struct {
	Kind    Kind   `json:"kind"`
	Target  string `json:"target"`
	Display string `json:"display,omitempty"`
	Anchor  string `json:"anchor,omitempty"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Scan returns the extension tokens in source, ordered by position. It walks
// the text exactly as Transform does: an embed hides the wiki-link inside
// it, tags are only found outside embeds and links, and code is skipped.
func Scan(source string) []Token {
	var out []Token
	offset := 0
	for _, seg := range split(source) {
		if !seg.code {
			out = append(out, scanProse(seg.text, offset, seg.boundary)...)
		}
		offset += len(seg.text)
	}
	return out
}

func scanProse(s string, offset int, boundary bool) []Token {
	var toks []Token
	visit(s, boundary,
		func(kind Kind, start, end int, inner string) {
			tok := Token{Kind: kind, Target: inner, Start: offset + start, End: offset + end}
			if kind == KindLink {
				tok.Target, tok.Display = SplitLink(inner)
				tok.Anchor = Anchor(tok.Target)
			}
			toks = append(toks, tok)
		},
		func(start, end int, boundary bool) {
			for _, m := range tagRe.FindAllStringSubmatchIndex(s[start:end], -1) {
				if m[0] == 0 && m[3] == 0 && !boundary {
					continue
				}
				// The token span starts at '#', after the boundary character.
				toks = append(toks, Token{
					Kind:   KindTag,
					Target: s[start+m[4] : start+m[5]],
					Start:  offset + start + m[3],
					End:    offset + start + m[1],
				})
			}
		})
	return toks
}
