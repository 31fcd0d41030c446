package transform

import "strings"

// The tag marker is the only part of the transform output that the Render
// Bridge depends on: an inline span carrying TagClass around "#body".
const (
	TagClass = "tag"
	TagOpen  = `<span class="` + TagClass + `">`
	TagClose = `</span>`
)

// WrapTag surrounds tag (including its leading '#') with the tag marker.
func WrapTag(tag string) string {
	return TagOpen + tag + TagClose
}

// IsTagLabel reports whether label is a '#' followed by one or more tag
// characters, i.e. something WrapTag could have produced.
func IsTagLabel(label string) bool {
	body, ok := strings.CutPrefix(label, "#")
	if !ok || body == "" {
		return false
	}
	for _, r := range body {
		if !isTagRune(r) {
			return false
		}
	}
	return true
}

func isTagRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	case r >= 0x4E00 && r <= 0x9FA5:
		return true
	}
	return false
}
