package domain

import "github.com/aretw0/genson/pkg/tgl"

// Schema is a compiled, read-only mapping of node keys to definitions.
type Schema struct {
	Nodes map[string]*NodeDefinition
	// Order keeps the document order of keys. It is only used to pick the
	// default root.
	Order []string
	Root  string
}

// NodeDefinition is one schema entry.
type NodeDefinition struct {
	Key string

	// Title and Line are TGL nodes; nil when the field is absent.
	Title tgl.Node
	Line  tgl.Node

	// RawLine is the line exactly as written in the document.
	RawLine any

	Prop map[string]any
	Slot Slot
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{Nodes: make(map[string]*NodeDefinition)}
}

// Add registers def, keeping the first-seen order of keys.
func (s *Schema) Add(def *NodeDefinition) {
	if _, exists := s.Nodes[def.Key]; !exists {
		s.Order = append(s.Order, def.Key)
	}
	s.Nodes[def.Key] = def
}

// Node returns the definition for key.
func (s *Schema) Node(key string) (*NodeDefinition, bool) {
	def, ok := s.Nodes[key]
	return def, ok
}

// RootKey returns the explicit root, or the first key in document order.
func (s *Schema) RootKey() string {
	if s.Root != "" {
		return s.Root
	}
	if len(s.Order) > 0 {
		return s.Order[0]
	}
	return ""
}
