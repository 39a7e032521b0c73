package domain

import "github.com/aretw0/genson/pkg/scope"

// MissingTitlePrefix starts the title of a sentinel descriptor.
const MissingTitlePrefix = "missing node: "

// Descriptor is one expanded node. Children are produced lazily by Expand.
type Descriptor struct {
	Key   string         `json:"key,omitempty"`
	Title string         `json:"title"`
	Line  string         `json:"line,omitempty"`
	Prop  map[string]any `json:"prop,omitempty"`

	// Literal holds the deep copy of an inline literal object.
	Literal map[string]any `json:"literal,omitempty"`

	// Missing marks the sentinel produced for an unknown key.
	Missing bool `json:"missing,omitempty"`

	// Children is filled only by eager walks such as the CLI tree export.
	Children []*Descriptor `json:"children,omitempty"`

	expand func(*scope.Scope) ([]*Descriptor, error)
}

// NewDescriptor creates a descriptor whose children come from expand.
func NewDescriptor(key, title string, expand func(*scope.Scope) ([]*Descriptor, error)) *Descriptor {
	return &Descriptor{Key: key, Title: title, expand: expand}
}

// NewLeaf creates a descriptor that never has children.
func NewLeaf(title string) *Descriptor {
	return &Descriptor{Title: title}
}

// NewMissing creates the sentinel descriptor for an unknown key.
func NewMissing(key string) *Descriptor {
	return &Descriptor{Key: key, Title: MissingTitlePrefix + key, Missing: true}
}

// Expand produces the next level of descriptors in a child of parent.
func (d *Descriptor) Expand(parent *scope.Scope) ([]*Descriptor, error) {
	if d == nil || d.expand == nil {
		return nil, nil
	}
	return d.expand(parent)
}

// IsLeaf reports whether Expand can never yield children.
func (d *Descriptor) IsLeaf() bool {
	return d.expand == nil
}
