package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// Format selects how an expanded tree is written.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name. Empty means auto.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (use text, markdown or json)", name)
}

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(0),
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return "", err
		}
		return r.Render(markdown)
	}
}

// Render writes d to w in format. Auto renders Markdown through glamour on
// a terminal and falls back to plain text otherwise.
func Render(w io.Writer, d *domain.Descriptor, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, d)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(d))
		return err
	case FormatText:
		return WriteText(w, d, Profile(w))
	}

	if !IsTerminal(w) {
		return WriteText(w, d, Profile(w))
	}
	out, err := NewRenderer()(Markdown(d))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
