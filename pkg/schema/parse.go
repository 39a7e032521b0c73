package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/tgl"
	"gopkg.in/yaml.v3"
)

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from a file extension. Unknown
// extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Parse decodes and compiles a schema document.
func Parse(data []byte, format Format) (*domain.Schema, error) {
	doc, order, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Compile(doc, order...)
}

// ParseJSON is Parse for JSON documents.
func ParseJSON(data []byte) (*domain.Schema, error) {
	return Parse(data, FormatJSON)
}

// ParseYAML is Parse for YAML documents.
func ParseYAML(data []byte) (*domain.Schema, error) {
	return Parse(data, FormatYAML)
}

// Decode reads a document into normalized values and the document order
// of its top-level keys.
func Decode(data []byte, format Format) (map[string]any, []string, error) {
	if format == FormatYAML {
		return decodeYAML(data)
	}
	return decodeJSON(data)
}

func decodeJSON(data []byte) (map[string]any, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid schema document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("invalid schema document: expected an object")
	}

	doc := make(map[string]any)
	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("invalid schema document: %w", err)
		}
		key, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("invalid schema document at %q: %w", key, err)
		}
		if _, dup := doc[key]; !dup {
			order = append(order, key)
		}
		doc[key] = tgl.Normalize(value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("invalid schema document: %w", err)
	}
	return doc, order, nil
}

func decodeYAML(data []byte) (map[string]any, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("invalid schema document: %w", err)
	}
	if len(root.Content) == 0 {
		return map[string]any{}, nil, nil
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("invalid schema document: expected a mapping")
	}

	doc := make(map[string]any, len(mapping.Content)/2)
	var order []string
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		var value any
		if err := mapping.Content[i+1].Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("invalid schema document at %q: %w", key, err)
		}
		if _, dup := doc[key]; !dup {
			order = append(order, key)
		}
		doc[key] = tgl.Normalize(value)
	}
	return doc, order, nil
}
