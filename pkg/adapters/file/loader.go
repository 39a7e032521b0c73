package file

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/schema"
)

// Loader implements ports.SchemaLoader over a single JSON or YAML document
// whose top-level keys are node definitions. Keys are listed in document
// order.
type Loader struct {
	Path  string
	nodes map[string][]byte
	order []string
}

// New reads path and prepares its definitions. The format follows the file
// extension (.yaml/.yml, anything else is JSON).
func New(path string) (*Loader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	l, err := NewFromBytes(data, schema.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.Path = path
	return l, nil
}

// NewFromBytes prepares the definitions of an in-memory document.
func NewFromBytes(data []byte, format schema.Format) (*Loader, error) {
	doc, order, err := schema.Decode(data, format)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string][]byte, len(doc))
	for key, def := range doc {
		bytes, err := json.Marshal(def)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal node %s: %w", key, err)
		}
		nodes[key] = bytes
	}
	return &Loader{nodes: nodes, order: order}, nil
}

// GetNode retrieves the definition of key as JSON.
func (l *Loader) GetNode(key string) ([]byte, error) {
	content, ok := l.nodes[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, key)
	}
	return content, nil
}

// ListNodes returns the document's keys in document order.
func (l *Loader) ListNodes() ([]string, error) {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out, nil
}
