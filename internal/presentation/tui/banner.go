package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Guidepost banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`   ___      _     _                      _   `, "#34d399"},
		{`  / _ \_  _(_)__| |___ _ __  ___ ___| |_ `, "#2dd4bf"},
		{` | (_ | || | / _` + "`" + ` / -_) '_ \/ _ (_-<  _|`, "#22d3ee"},
		{`  \___|\_,_|_\__,_\___| .__/\___/__/\__|`, "#38bdf8"},
		{`                      |_|               `, "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
