// Package schema compiles GenSON schema documents into domain.Schema values.
//
// A document maps node keys to definitions:
//
//	{
//	  "forest": {"title": "Forest", "slot": {"seq": ["tree*[2,5]", "#clearing", "river"]}},
//	  "tree":   {"title": {"type": "option", "items": ["Oak", "Pine"]}},
//	  "river":  {"title": "River", "slot": {"branch": [
//	      {"weight": 3, "content": ["fish*2"]},
//	      {"weight": 1, "content": [null]}
//	  ]}}
//	}
//
// Every duck-typed slot and term shape is resolved once here into the
// tagged unions of package domain, so expansion switches on a single kind.
// Structural problems are reported as *ValidationError values collected in
// an *AggregateError.
//
// Documents may be JSON or YAML. Both parsers keep the document order of
// keys; the first key is the default root.
package schema
