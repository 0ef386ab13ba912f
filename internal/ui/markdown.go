package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
)

// renderFunc renders an assistant answer for the given width.
type renderFunc func(markdown string, width int) string

// plainRenderer leaves answers untouched.
func plainRenderer(markdown string, _ int) string {
	return markdown
}

// glamourRenderer renders markdown answers, rebuilding the term renderer when the
// width changes.
type glamourRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

func newGlamourRenderer(style string) renderFunc {
	g := &glamourRenderer{style: style}
	return g.render
}

func (g *glamourRenderer) render(markdown string, width int) string {
	if g.renderer == nil || g.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(g.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Debug().Err(err).Str("component", "ui").Msg("Markdown renderer unavailable")
			return markdown
		}
		g.renderer = r
		g.width = width
	}

	out, err := g.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(out, "\n")
}
