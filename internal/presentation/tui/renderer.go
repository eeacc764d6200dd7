package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer transforms markdown before it is written to the terminal.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer sized to width columns.
// A width of zero keeps glamour's default word wrap.
func NewRenderer(width int) Renderer {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return Plain
	}
	return r.Render
}

// Plain returns markdown untouched.
func Plain(markdown string) (string, error) {
	return markdown, nil
}

// ForFile picks a renderer for f: glamour when f is a terminal, Plain otherwise.
func ForFile(f *os.File) Renderer {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return Plain
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		width = 0
	}
	return NewRenderer(width)
}
