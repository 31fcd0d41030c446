package render

import (
	"fmt"
	"regexp"

	"github.com/charmbracelet/glamour"

	"github.com/starford/kyuubi/internal/transform"
)

var terminalTagRe = regexp.MustCompile(regexp.QuoteMeta(transform.TagOpen) + `(#[^<]+)` + regexp.QuoteMeta(transform.TagClose))

// Terminal renders transformed markdown for a terminal. Raw HTML does not
// survive glamour, so tag markers become inline code, which glamour draws
// with a background much like the browser badge.
func Terminal(markdown string, width int, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("render: terminal renderer: %w", err)
	}
	out, err := tr.Render(terminalTagRe.ReplaceAllString(markdown, "`$1`"))
	if err != nil {
		return "", fmt.Errorf("render: terminal: %w", err)
	}
	return out, nil
}
