package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// NewRenderer returns a function that renders markdown using glamour.
// Terminals get an auto-detected light or dark theme; anything else gets
// plain ASCII so piped output stays readable.
func NewRenderer(interactive bool) (func(string) (string, error), error) {
	style := glamour.WithStandardStyle(styles.NoTTYStyle)
	if interactive {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(120))
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}
