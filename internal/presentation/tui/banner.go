package tui

import (
	"fmt"
	"io"
)

// PrintBanner writes the GenSON ASCII art banner to w.
func PrintBanner(w io.Writer, version string) {
	p := Profile(w)
	// A subtle gradient (Teal/Green)
	lines := []struct{ text, color string }{
		{"   ____            ____   ___  _   _ ", "#2dd4bf"},
		{"  / ___| ___ _ __ / ___| / _ \\| \\ | |", "#34d399"},
		{" | |  _ / _ \\ '_ \\\\___ \\| | | |  \\| |", "#4ade80"},
		{" | |_| |  __/ | | |___) | |_| | |\\  |", "#a3e635"},
		{"  \\____|\\___|_| |_|____/ \\___/|_| \\_|", "#facc15"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, p.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
