package scope

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxIndex is the largest list index a Set may create.
const MaxIndex = 1 << 16

const (
	parentName   = "parent"
	parentPrefix = "parent."
)

// Get resolves a dotted/bracketed path such as "a.b", "names[0]" or
// "parent.x". A missing segment yields (nil, false); Get never fails.
func (s *Scope) Get(path string) (any, bool) {
	if path == parentName {
		if s.parent == nil {
			return nil, false
		}
		return s.parent.Snapshot(), true
	}
	if strings.HasPrefix(path, parentPrefix) {
		if s.parent == nil {
			return nil, false
		}
		return s.parent.Get(path[len(parentPrefix):])
	}

	tokens := Tokenize(path)
	if len(tokens) == 0 {
		return nil, false
	}

	current, ok := s.Lookup(tokens[0])
	if !ok {
		return nil, false
	}
	for _, tok := range tokens[1:] {
		current, ok = index(current, tok)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set writes value at path, creating intermediate maps as needed.
// The write lands on the current layer; containers inherited from an outer
// layer are copied first so the outer layer is left untouched. A "parent."
// prefix targets the enclosing layer and fails with ErrNoParentScope at the root.
// The stored value is a deep copy of value.
func (s *Scope) Set(path string, value any) error {
	target := s
	if strings.HasPrefix(path, parentPrefix) {
		if s.parent == nil {
			return fmt.Errorf("%w for path %q", ErrNoParentScope, path)
		}
		target = s.parent
		path = path[len(parentPrefix):]
	}

	tokens := Tokenize(path)
	if len(tokens) == 0 {
		return nil
	}

	value = Clone(value)
	head := tokens[0]
	if len(tokens) == 1 {
		target.vars[head] = value
		return nil
	}

	root, local := target.vars[head]
	if !local {
		if inherited, ok := target.Lookup(head); ok {
			root = Clone(inherited)
		}
	}
	if !isContainer(root) {
		root = make(map[string]any)
	}
	updated, err := assign(root, tokens[1:], value)
	if err != nil {
		return fmt.Errorf("set %q: %w", path, err)
	}
	target.vars[head] = updated
	return nil
}

// Tokenize splits a path into its segments.
// "a.b[0].c" becomes ["a", "b", "0", "c"]. Malformed brackets end the scan.
func Tokenize(path string) []string {
	var tokens []string
	i := 0
	for i < len(path) {
		switch c := path[i]; {
		case c == '.':
			i++
		case c == '[':
			end := strings.IndexByte(path[i:], ']')
			if end == -1 {
				return tokens
			}
			tokens = append(tokens, path[i+1:i+end])
			i += end + 1
		default:
			j := i
			for j < len(path) && isIdentByte(path[j]) {
				j++
			}
			if j == i {
				// skip characters that cannot start a segment
				i++
				continue
			}
			tokens = append(tokens, path[i:j])
			i = j
		}
	}
	return tokens
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// numericIndex reports whether tok is an all-digit array index.
func numericIndex(tok string) (int, bool) {
	if tok == "" {
		return 0, false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}

func index(container any, tok string) (any, bool) {
	switch c := container.(type) {
	case map[string]any:
		v, ok := c[tok]
		return v, ok
	case []any:
		i, ok := numericIndex(tok)
		if !ok || i >= len(c) {
			return nil, false
		}
		return c[i], true
	case []string:
		i, ok := numericIndex(tok)
		if !ok || i >= len(c) {
			return nil, false
		}
		return c[i], true
	}
	return nil, false
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func assign(container any, tokens []string, value any) (any, error) {
	tok := tokens[0]
	if len(tokens) == 1 {
		return put(container, tok, value)
	}
	child, _ := index(container, tok)
	if !isContainer(child) {
		child = make(map[string]any)
	}
	v, err := assign(child, tokens[1:], value)
	if err != nil {
		return nil, err
	}
	return put(container, tok, v)
}

func put(container any, tok string, value any) (any, error) {
	switch c := container.(type) {
	case map[string]any:
		c[tok] = value
		return c, nil
	case []any:
		if i, ok := numericIndex(tok); ok {
			if i > MaxIndex {
				return nil, fmt.Errorf("%w: %d > %d", ErrIndexOutOfRange, i, MaxIndex)
			}
			for len(c) <= i {
				c = append(c, nil)
			}
			c[i] = value
			return c, nil
		}
		m := make(map[string]any, len(c)+1)
		for i, e := range c {
			m[strconv.Itoa(i)] = e
		}
		m[tok] = value
		return m, nil
	}
	return map[string]any{tok: value}, nil
}

// Clone deep-copies JSON-shaped values (maps, slices and scalars).
// Other values are returned as-is.
func Clone(v any) any {
	switch c := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, e := range c {
			out[k] = Clone(e)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, e := range c {
			out[i] = Clone(e)
		}
		return out
	}
	return v
}
