package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/muesli/termenv"
)

// Markdown renders a filled tree as a nested bullet list. Lines follow
// their title in italics.
func Markdown(d *domain.Descriptor) string {
	var sb strings.Builder
	sb.WriteString("# " + mdEscape(d.Title) + "\n\n")
	if d.Line != "" {
		sb.WriteString("_" + mdEscape(d.Line) + "_\n\n")
	}
	for _, c := range d.Children {
		writeMarkdown(&sb, c, 0)
	}
	return sb.String()
}

func writeMarkdown(sb *strings.Builder, d *domain.Descriptor, level int) {
	indent := strings.Repeat("  ", level)
	title := mdEscape(d.Title)
	switch {
	case d.Missing:
		title = "~~" + title + "~~"
	case d.Literal != nil:
		title = "`" + strings.ReplaceAll(d.Title, "`", "'") + "`"
	default:
		title = "**" + title + "**"
	}
	sb.WriteString(indent + "- " + title)
	if d.Line != "" {
		sb.WriteString(": _" + mdEscape(d.Line) + "_")
	}
	sb.WriteString("\n")
	for _, c := range d.Children {
		writeMarkdown(sb, c, level+1)
	}
}

var mdReplacer = strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`)

func mdEscape(s string) string {
	return mdReplacer.Replace(s)
}

// WriteText writes a filled tree with box-drawing guides, colored for p.
func WriteText(w io.Writer, d *domain.Descriptor, p termenv.Profile) error {
	if _, err := fmt.Fprintln(w, styleTitle(d, p)+styleLine(d, p)); err != nil {
		return err
	}
	return writeChildren(w, d.Children, "", p)
}

func writeChildren(w io.Writer, children []*domain.Descriptor, prefix string, p termenv.Profile) error {
	for i, c := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		guide := p.String(prefix + branch).Foreground(p.Color("8"))
		if _, err := fmt.Fprintln(w, guide.String()+styleTitle(c, p)+styleLine(c, p)); err != nil {
			return err
		}
		if err := writeChildren(w, c.Children, prefix+next, p); err != nil {
			return err
		}
	}
	return nil
}

func styleTitle(d *domain.Descriptor, p termenv.Profile) string {
	s := p.String(d.Title)
	switch {
	case d.Missing:
		s = s.Foreground(p.Color("1"))
	case d.Literal != nil:
		s = s.Foreground(p.Color("3"))
	default:
		s = s.Bold()
	}
	return s.String()
}

func styleLine(d *domain.Descriptor, p termenv.Profile) string {
	if d.Line == "" {
		return ""
	}
	return p.String(": " + d.Line).Foreground(p.Color("6")).Faint().String()
}

// WriteJSON writes a filled tree as indented JSON.
func WriteJSON(w io.Writer, d *domain.Descriptor) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
