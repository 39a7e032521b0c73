package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/ports"
	"github.com/aretw0/genson/pkg/tgl"
)

// Load compiles every definition a loader serves, in ListNodes order.
// Loader failures abort; definition problems are aggregated like Compile.
func Load(loader ports.SchemaLoader) (*domain.Schema, error) {
	keys, err := loader.ListNodes()
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}

	doc := make(map[string]any, len(keys))
	for _, key := range keys {
		data, err := loader.GetNode(key)
		if err != nil {
			return nil, fmt.Errorf("loading node %q: %w", key, err)
		}
		value, err := decodeValue(data)
		if err != nil {
			return nil, fmt.Errorf("decoding node %q: %w", key, err)
		}
		doc[key] = value
	}
	return Compile(doc, keys...)
}

func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return tgl.Normalize(v), nil
}
