// Package markdown renders finalized assistant replies for the terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const defaultWidth = 100

var (
	mu        sync.Mutex
	styleName = "dark"
	renderers = map[int]*glamour.TermRenderer{}
)

// SetStyle selects the glamour standard style ("dark", "light", ...).
// Cached renderers are dropped.
func SetStyle(name string) {
	mu.Lock()
	defer mu.Unlock()
	if name == styleName {
		return
	}
	styleName = name
	renderers = map[int]*glamour.TermRenderer{}
}

func renderer(width int) *glamour.TermRenderer {
	mu.Lock()
	defer mu.Unlock()
	if r, ok := renderers[width]; ok {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styleName),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	renderers[width] = r
	return r
}

// Render converts markdown to styled output wrapped at width (0 uses a
// default). It falls back to the raw text if glamour fails.
func Render(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	if width <= 0 {
		width = defaultWidth
	}
	r := renderer(width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// glamour pads with blank lines; trim for inline display.
	return strings.Trim(out, "\n")
}
