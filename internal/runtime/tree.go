package runtime

import "github.com/aretw0/genson/pkg/domain"

// Tree describes key and eagerly expands it levels deep, filling Children.
// Each descriptor is expanded in the scope it was produced in.
func (e *Engine) Tree(key string, levels int) (*domain.Descriptor, error) {
	root, err := e.Accessor().Get(key)
	if err != nil {
		return nil, err
	}
	if err := e.fill(root, levels); err != nil {
		return nil, err
	}
	return root, nil
}

func (e *Engine) fill(d *domain.Descriptor, levels int) error {
	if levels <= 0 || d.IsLeaf() {
		return nil
	}
	children, err := d.Expand(nil)
	if err != nil {
		return err
	}
	d.Children = children
	for _, c := range children {
		if err := e.fill(c, levels-1); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of descriptors in a filled tree, root included.
func Count(d *domain.Descriptor) int {
	if d == nil {
		return 0
	}
	n := 1
	for _, c := range d.Children {
		n += Count(c)
	}
	return n
}
