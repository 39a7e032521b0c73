package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/tgl"
)

// GraphOverlay contains expansion data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	Root         string
}

// GenerateMermaid produces a Mermaid flowchart of the schema's references.
// It applies semantic styling:
// - Root: ((Circle))
// - Branch slot: {Rhombus}
// - Leaf (no slot): ([Stadium])
// - Default: [Rectangle]
// Edges carry repeat counts, branch weights and loop markers. References to
// undefined keys are drawn and styled as missing.
// It also applies overlay styles (Visited/Root) if provided.
func GenerateMermaid(s *domain.Schema, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	root := s.RootKey()
	if overlay != nil && overlay.Root != "" {
		root = overlay.Root
	}

	missing := make(map[string]bool)
	var missingOrder []string

	for _, key := range s.Order {
		def, _ := s.Node(key)
		safeID := sanitizeMermaidID(key)

		opener, closer := "[", "]"
		switch {
		case key == root:
			opener, closer = "((", "))"
		case def.Slot.Kind == domain.SlotBranch:
			opener, closer = "{", "}"
		case def.Slot.Kind == domain.SlotNone:
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escape(key), closer))

		for _, e := range edges(def.Slot) {
			if _, ok := s.Node(e.to); !ok && !missing[e.to] {
				missing[e.to] = true
				missingOrder = append(missingOrder, e.to)
			}
			arrow := "-->"
			if e.label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escape(e.label))
			}
			if e.dotted {
				arrow = "-.->"
				if e.label != "" {
					arrow = fmt.Sprintf("-. \"%s\" .->", escape(e.label))
				}
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(e.to)))
		}
	}

	if len(missingOrder) > 0 {
		sb.WriteString("\n    %% Missing nodes\n")
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")
		for _, key := range missingOrder {
			safeID := sanitizeMermaidID(key)
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, escape(key)))
			sb.WriteString(fmt.Sprintf("    class %s missing;\n", safeID))
		}
	}

	// Apply Overlay Styles
	if overlay != nil && len(overlay.VisitedNodes) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, key := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(key)
			if !visitedSet[safeID] && safeID != "" && !missing[key] {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
	}

	return sb.String()
}

type edge struct {
	to     string
	label  string
	dotted bool
}

func edges(slot domain.Slot) []edge {
	var out []edge
	switch slot.Kind {
	case domain.SlotList:
		for _, k := range slot.Keys {
			out = append(out, edge{to: k, label: "1..4"})
		}
	case domain.SlotSeq:
		for _, t := range slot.Terms {
			out = append(out, termEdges(t, "")...)
		}
	case domain.SlotBranch:
		for _, b := range slot.Branches {
			label := "w=" + weightLabel(b.Weight)
			for _, t := range b.Content {
				out = append(out, termEdges(t, label)...)
			}
		}
	case domain.SlotTerm:
		if slot.Term != nil {
			out = append(out, termEdges(*slot.Term, "")...)
		}
	}
	return out
}

func termEdges(t domain.Term, prefix string) []edge {
	join := func(parts ...string) string {
		var kept []string
		for _, p := range parts {
			if p != "" {
				kept = append(kept, p)
			}
		}
		return strings.Join(kept, " ")
	}

	switch t.Kind {
	case domain.TermKey:
		return []edge{{to: t.Key, label: join(prefix, countLabel(t.Count))}}
	case domain.TermRef:
		return []edge{{to: t.Key, label: prefix}}
	case domain.TermRepeat:
		if t.Value == nil {
			return nil
		}
		return termEdges(*t.Value, join(prefix, countLabel(t.Count)))
	case domain.TermContinue:
		if t.Value == nil {
			return nil
		}
		inner := termEdges(*t.Value, join(prefix, "while"))
		for i := range inner {
			inner[i].dotted = true
		}
		return inner
	}
	return nil
}

func countLabel(c domain.Count) string {
	switch {
	case c.Expr != nil:
		return "x?"
	case c.Min == c.Max && c.Min == 1:
		return ""
	case c.Min == c.Max:
		return fmt.Sprintf("x%d", c.Min)
	}
	return fmt.Sprintf("x%d..%d", c.Min, c.Max)
}

func weightLabel(w tgl.Expr) string {
	if w == nil {
		return "1"
	}
	if lit, ok := w.(*tgl.Literal); ok {
		return tgl.ToString(lit.Value)
	}
	return "?"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
