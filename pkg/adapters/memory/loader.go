package memory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/genson/pkg/domain"
)

// Loader implements ports.SchemaLoader using an in-memory map.
type Loader struct {
	nodes map[string][]byte
	order []string
}

// NewLoader creates a new MemoryLoader with the provided raw data (JSON strings).
// Keys named in order are listed first, in that order; the rest follow sorted.
func NewLoader(data map[string]string, order ...string) *Loader {
	nodes := make(map[string][]byte)
	for k, v := range data {
		nodes[k] = []byte(v)
	}
	return &Loader{
		nodes: nodes,
		order: order,
	}
}

// NewFromDefinitions creates a new MemoryLoader from decoded definitions.
// This handles serialization automatically, improving DX for tests.
func NewFromDefinitions(defs map[string]any, order ...string) (*Loader, error) {
	data := make(map[string][]byte, len(defs))
	for key, def := range defs {
		if key == "" {
			return nil, fmt.Errorf("definition missing key")
		}
		bytes, err := json.Marshal(def)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal node %s: %w", key, err)
		}
		data[key] = bytes
	}
	return &Loader{nodes: data, order: order}, nil
}

// GetNode retrieves the raw definition of a node by key.
func (l *Loader) GetNode(key string) ([]byte, error) {
	content, ok := l.nodes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, key)
	}
	return content, nil
}

// ListNodes returns all available node keys.
func (l *Loader) ListNodes() ([]string, error) {
	seen := make(map[string]bool, len(l.nodes))
	keys := make([]string, 0, len(l.nodes))
	for _, k := range l.order {
		if _, ok := l.nodes[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	rest := make([]string, 0, len(l.nodes)-len(keys))
	for k := range l.nodes {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest) // Deterministic order
	return append(keys, rest...), nil
}
