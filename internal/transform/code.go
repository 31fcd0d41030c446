package transform

import (
	"strings"
	"unicode/utf8"
)

// segment is a run of source text that is either prose, where the rules
// apply, or code, which is copied verbatim.
type segment struct {
	text     string
	code     bool
	boundary bool // prose only: start of text counts as start-of-text
}

// split cuts src into prose and code segments. Fenced code blocks are found
// line by line; inline code spans are then found inside each prose run. An
// unclosed fence runs to the end of the document, as in CommonMark.
func split(src string) []segment {
	var segs []segment

	var (
		inFence   bool
		fenceChar byte
		fenceLen  int
		codeStart int
		prose     int
	)
	for pos := 0; pos < len(src); {
		end := len(src)
		if i := strings.IndexByte(src[pos:], '\n'); i >= 0 {
			end = pos + i + 1
		}
		line := src[pos:end]

		if !inFence {
			if ch, n, ok := fenceOpen(line); ok {
				segs = appendProse(segs, src[prose:pos])
				inFence, fenceChar, fenceLen, codeStart = true, ch, n, pos
			}
		} else if fenceClose(line, fenceChar, fenceLen) {
			segs = append(segs, segment{text: src[codeStart:end], code: true})
			inFence, prose = false, end
		}
		pos = end
	}
	if inFence {
		segs = append(segs, segment{text: src[codeStart:], code: true})
	} else {
		segs = appendProse(segs, src[prose:])
	}

	for i := range segs {
		if segs[i].code {
			continue
		}
		segs[i].boundary = i == 0 || endsWithSpace(segs[i-1].text)
	}
	return segs
}

// appendProse splits text on inline code spans and appends the pieces. A
// code span lying inside a wiki-link stays part of the link.
func appendProse(segs []segment, text string) []segment {
	var links [][]int
	if strings.Contains(text, "[[") {
		links = linkRe.FindAllStringIndex(text, -1)
	}
	start := 0
	for i := 0; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		j := i
		for j < len(text) && text[j] == '`' {
			j++
		}
		if i > 0 && text[i-1] == '\\' {
			i = j
			continue
		}
		// Code spans never cross a blank line.
		limit := len(text)
		if k := strings.Index(text[j:], "\n\n"); k >= 0 {
			limit = j + k
		}
		closing := findRun(text[j:limit], j-i)
		if closing < 0 {
			i = j
			continue
		}
		stop := j + closing + (j - i)
		if insideLink(links, i, stop) {
			i = stop
			continue
		}
		if start < i {
			segs = append(segs, segment{text: text[start:i]})
		}
		segs = append(segs, segment{text: text[i:stop], code: true})
		start, i = stop, stop
	}
	if start < len(text) {
		segs = append(segs, segment{text: text[start:]})
	}
	return segs
}

func insideLink(links [][]int, from, to int) bool {
	for _, l := range links {
		if l[0] < from && to <= l[1] {
			return true
		}
	}
	return false
}

// findRun returns the offset of the first backtick run in s whose length is
// exactly n, or -1.
func findRun(s string, n int) int {
	for i := 0; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '`' {
			j++
		}
		if j-i == n {
			return i
		}
		i = j
	}
	return -1
}

func fenceOpen(line string) (byte, int, bool) {
	rest := trimIndent(line)
	if rest == "" || (rest[0] != '`' && rest[0] != '~') {
		return 0, 0, false
	}
	ch := rest[0]
	n := 0
	for n < len(rest) && rest[n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	if ch == '`' && strings.IndexByte(rest[n:], '`') >= 0 {
		return 0, 0, false
	}
	return ch, n, true
}

func fenceClose(line string, ch byte, min int) bool {
	rest := trimIndent(line)
	n := 0
	for n < len(rest) && rest[n] == ch {
		n++
	}
	return n >= min && strings.TrimRight(rest[n:], " \t\r\n") == ""
}

// trimIndent strips up to three leading spaces.
func trimIndent(line string) string {
	for i := 0; i < 3 && strings.HasPrefix(line, " "); i++ {
		line = line[1:]
	}
	return line
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return isSpace(r)
}

// isSpace mirrors the whitespace class used by the tag rule.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}
