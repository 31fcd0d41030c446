package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	classRe    = regexp.MustCompile(`^[\w\s-]+$`)
	idRe       = regexp.MustCompile(`^\S+$`)
	checkboxRe = regexp.MustCompile(`^checkbox$`)
)

// newPolicy extends the UGC policy with what the preview emits: classes for
// tag badges, embed placeholders, math and chroma, heading and footnote ids,
// and the disabled checkboxes of task lists. Heading ids follow wiki-link
// anchors, which keep punctuation.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classRe).Globally()
	p.AllowAttrs("id").Matching(idRe).OnElements("h1", "h2", "h3", "h4", "h5", "h6", "li", "sup", "div", "section")
	p.AllowElements("input")
	p.AllowAttrs("type").Matching(checkboxRe).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}
