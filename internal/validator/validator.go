package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/genson/pkg/domain"
)

// Dangling is a slot reference to a key the schema does not define.
type Dangling struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Report is the result of crawling a schema from its root.
type Report struct {
	Root        string     `json:"root"`
	Reachable   []string   `json:"reachable"`
	Unreachable []string   `json:"unreachable,omitempty"`
	Dangling    []Dangling `json:"dangling,omitempty"`
	// Recursive lists reachable keys that can reach themselves again.
	// Their expansion depth is bounded only by the recursion ceiling.
	Recursive []string `json:"recursive,omitempty"`
}

// OK reports whether every reference resolves.
func (r *Report) OK() bool {
	return len(r.Dangling) == 0
}

// ValidateSchema checks for broken references and unreachable nodes
// starting from root (the schema's default root when empty).
// It returns the report and, when references are broken, an error
// listing them.
func ValidateSchema(s *domain.Schema, root string) (*Report, error) {
	if root == "" {
		root = s.RootKey()
	}
	report := &Report{Root: root}
	if _, ok := s.Node(root); !ok {
		return report, fmt.Errorf("root node '%s' not found", root)
	}

	// 1. Crawler
	visited := map[string]bool{root: true}
	queue := []string{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		report.Reachable = append(report.Reachable, current)

		def, _ := s.Node(current)
		for _, target := range def.Slot.References() {
			if _, ok := s.Node(target); !ok {
				report.Dangling = append(report.Dangling, Dangling{From: current, To: target})
				continue
			}
			if !visited[target] {
				visited[target] = true
				queue = append(queue, target)
			}
		}
	}

	// 2. Unreachable definitions
	for _, key := range s.Order {
		if !visited[key] {
			report.Unreachable = append(report.Unreachable, key)
		}
	}

	// 3. Recursion
	report.Recursive = recursive(s, report.Reachable)

	if len(report.Dangling) > 0 {
		lines := make([]string, len(report.Dangling))
		for i, d := range report.Dangling {
			lines[i] = fmt.Sprintf("Missing node '%s' referenced by '%s'", d.To, d.From)
		}
		return report, fmt.Errorf("found %d errors:\n- %s", len(lines), strings.Join(lines, "\n- "))
	}
	return report, nil
}

// recursive returns the keys that lie on a reference cycle, sorted.
func recursive(s *domain.Schema, keys []string) []string {
	var out []string
	for _, key := range keys {
		if reaches(s, key, key) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func reaches(s *domain.Schema, from, target string) bool {
	seen := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		def, ok := s.Node(current)
		if !ok {
			continue
		}
		for _, next := range def.Slot.References() {
			if next == target {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
